// Package static provides network map and container sources read from YAML
// files for standalone deployments.
package static

import (
	"encoding/hex"
	"fmt"
	"os"
	"sort"

	"github.com/kestrelfs/kestrel-node/pkg/core/container"
	"github.com/kestrelfs/kestrel-node/pkg/core/netmap"
	"github.com/kestrelfs/kestrel-node/pkg/policy"
	"gopkg.in/yaml.v3"
)

type netmapFile struct {
	Epoch uint64     `yaml:"epoch"`
	Nodes []nodeFile `yaml:"nodes"`
}

type nodeFile struct {
	PublicKey  string            `yaml:"public_key"`
	Addresses  []string          `yaml:"addresses"`
	State      string            `yaml:"state"`
	Attributes map[string]string `yaml:"attributes"`
}

type containersFile struct {
	Containers []containerFile `yaml:"containers"`
}

type containerFile struct {
	Owner      string            `yaml:"owner"`
	Nonce      string            `yaml:"nonce"`
	Attributes map[string]string `yaml:"attributes"`
	Policy     policyNode        `yaml:"policy"`
}

// policyNode is a placement policy given either as a structured mapping
// or as a string in the policy language.
type policyNode struct {
	text string
	file policyFile
}

func (x *policyNode) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		return n.Decode(&x.text)
	}

	return n.Decode(&x.file)
}

func (x policyNode) toPolicy() (netmap.PlacementPolicy, error) {
	if x.text != "" {
		return policy.Parse(x.text)
	}

	return x.file.toPolicy()
}

type policyFile struct {
	BackupFactor uint32         `yaml:"backup_factor"`
	Replicas     []replicaFile  `yaml:"replicas"`
	Selectors    []selectorFile `yaml:"selectors"`
	Filters      []filterFile   `yaml:"filters"`
}

type replicaFile struct {
	Count    uint32 `yaml:"count"`
	Selector string `yaml:"selector"`
}

type selectorFile struct {
	Name      string `yaml:"name"`
	Count     uint32 `yaml:"count"`
	Clause    string `yaml:"clause"`
	Attribute string `yaml:"attribute"`
	Filter    string `yaml:"filter"`
}

type filterFile struct {
	Name    string       `yaml:"name"`
	Key     string       `yaml:"key"`
	Op      string       `yaml:"op"`
	Value   string       `yaml:"value"`
	Filters []filterFile `yaml:"filters"`
}

func readYAML(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	return nil
}

// sortedKeys returns keys of m in ascending order, so the binary form
// of the container does not depend on the map iteration order.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

func (f nodeFile) toNode() (netmap.NodeInfo, error) {
	key, err := hex.DecodeString(f.PublicKey)
	if err != nil {
		return netmap.NodeInfo{}, fmt.Errorf("invalid public key: %w", err)
	}

	if len(key) == 0 {
		return netmap.NodeInfo{}, fmt.Errorf("missing public key")
	}

	n := netmap.NodeInfo{
		PublicKeyBytes: key,
		Endpoints:      f.Addresses,
	}

	if f.State != "" {
		st, ok := netmap.ParseNodeState(f.State)
		if !ok {
			return netmap.NodeInfo{}, fmt.Errorf("unknown node state %q", f.State)
		}

		n.State = st
	}

	for _, k := range sortedKeys(f.Attributes) {
		n.Attrs = append(n.Attrs, netmap.NodeAttribute{Key: k, Value: f.Attributes[k]})
	}

	return n, nil
}

func (f filterFile) toFilter() (netmap.Filter, error) {
	res := netmap.Filter{
		Name:  f.Name,
		Key:   f.Key,
		Value: f.Value,
	}

	if f.Op != "" {
		op, err := netmap.ParseOperation(f.Op)
		if err != nil {
			return netmap.Filter{}, err
		}

		res.Op = op
	}

	for i := range f.Filters {
		sub, err := f.Filters[i].toFilter()
		if err != nil {
			return netmap.Filter{}, err
		}

		res.Filters = append(res.Filters, sub)
	}

	return res, nil
}

func (f policyFile) toPolicy() (netmap.PlacementPolicy, error) {
	p := netmap.PlacementPolicy{
		BackupFactor: f.BackupFactor,
	}

	for _, r := range f.Replicas {
		p.Replicas = append(p.Replicas, netmap.ReplicaDescriptor{Count: r.Count, Selector: r.Selector})
	}

	for _, s := range f.Selectors {
		clause, err := netmap.ParseClause(s.Clause)
		if err != nil {
			return netmap.PlacementPolicy{}, err
		}

		p.Selectors = append(p.Selectors, netmap.Selector{
			Name:      s.Name,
			Count:     s.Count,
			Clause:    clause,
			Attribute: s.Attribute,
			Filter:    s.Filter,
		})
	}

	for i := range f.Filters {
		flt, err := f.Filters[i].toFilter()
		if err != nil {
			return netmap.PlacementPolicy{}, err
		}

		p.Filters = append(p.Filters, flt)
	}

	if err := p.Validate(); err != nil {
		return netmap.PlacementPolicy{}, err
	}

	return p, nil
}

func (f containerFile) toContainer() (container.Container, error) {
	owner, err := hex.DecodeString(f.Owner)
	if err != nil {
		return container.Container{}, fmt.Errorf("invalid owner: %w", err)
	}

	nonce, err := hex.DecodeString(f.Nonce)
	if err != nil {
		return container.Container{}, fmt.Errorf("invalid nonce: %w", err)
	}

	pp, err := f.Policy.toPolicy()
	if err != nil {
		return container.Container{}, fmt.Errorf("invalid placement policy: %w", err)
	}

	c := container.Container{
		Owner:  owner,
		Nonce:  nonce,
		Policy: pp,
	}

	for _, k := range sortedKeys(f.Attributes) {
		c.Attributes = append(c.Attributes, container.Attribute{Key: k, Value: f.Attributes[k]})
	}

	return c, nil
}
