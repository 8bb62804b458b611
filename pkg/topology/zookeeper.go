// Package topology reads zookeeper discovery files: one YAML file per
// cluster, each a list of [host, port] pairs.
package topology

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultDiscoveryPath is where infrastructure zookeeper topology files live.
const DefaultDiscoveryPath = "/etc/zookeeper_discovery/infrastructure"

// ListClusters returns the set of cluster names found in the discovery
// directory. Cluster and zookeeper cluster names are assumed to match.
func ListClusters(discoveryPath string) ([]string, error) {
	entries, err := os.ReadDir(discoveryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read discovery path %s: %w", discoveryPath, err)
	}

	seen := make(map[string]struct{})
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name, _, _ := strings.Cut(e.Name(), ".")
		if name != "" {
			seen[name] = struct{}{}
		}
	}

	clusters := make([]string, 0, len(seen))
	for name := range seen {
		clusters = append(clusters, name)
	}
	sort.Strings(clusters)
	return clusters, nil
}

// ParseTopologyFile reads one topology file and returns its host:port pairs
// in file order.
func ParseTopologyFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read topology file %s: %w", path, err)
	}

	// Each entry is a [host, port] pair; port may be a bare integer.
	var raw [][]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse topology file %s: %w", path, err)
	}

	servers := make([]string, 0, len(raw))
	for i, pair := range raw {
		if len(pair) < 2 {
			return nil, fmt.Errorf("malformed topology entry %d in %s", i, path)
		}
		servers = append(servers, fmt.Sprintf("%v:%v", pair[0], pair[1]))
	}
	return servers, nil
}

// ZookeeperServers returns the host:port list for a cluster's zookeeper
// ensemble, read from <discoveryPath>/<cluster>.yaml.
func ZookeeperServers(discoveryPath, cluster string) ([]string, error) {
	return ParseTopologyFile(filepath.Join(discoveryPath, cluster+".yaml"))
}

// Hosts strips the port from each host:port pair.
func Hosts(servers []string) []string {
	hosts := make([]string, len(servers))
	for i, s := range servers {
		host, _, _ := strings.Cut(s, ":")
		hosts[i] = host
	}
	return hosts
}
