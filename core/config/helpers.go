package config

import (
	"strings"

	"github.com/samber/lo"
)

// LookupNetwork finds an allow-listed network by name or by RPC URL. An
// empty key selects the first configured network.
func (c *Config) LookupNetwork(nameOrURL string) (Network, bool) {
	return lookupNetwork(c.Networks, nameOrURL)
}

func lookupNetwork(networks []Network, nameOrURL string) (Network, bool) {
	key := strings.TrimSpace(nameOrURL)
	if key == "" {
		if len(networks) == 0 {
			return Network{}, false
		}
		return networks[0], true
	}

	return lo.Find(networks, func(n Network) bool {
		return strings.EqualFold(n.Name, key) || strings.TrimRight(n.RPCURL, "/") == strings.TrimRight(key, "/")
	})
}

// NetworkNames lists the allow-list in configured order.
func (c *Config) NetworkNames() []string {
	return lo.Map(c.Networks, func(n Network, _ int) string {
		return n.Name
	})
}
