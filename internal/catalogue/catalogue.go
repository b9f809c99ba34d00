// Package catalogue provides the protocol catalogue consumed by the recommendation
// engine. A Catalogue is built once at start-up from the builtin entries, a YAML/JSON
// file or the protocol repository, and is read-only afterwards.
package catalogue

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"go.yaml.in/yaml/v3"

	"github.com/oncology-cds-engine/internal/domain"
)

// Catalogue is an immutable, validated set of protocols.
type Catalogue struct {
	protocols []domain.Protocol
	index     map[string]int
}

// New validates protocols and builds a catalogue from private copies of them.
func New(protocols []domain.Protocol) (*Catalogue, error) {
	c := &Catalogue{
		protocols: make([]domain.Protocol, 0, len(protocols)),
		index:     make(map[string]int, len(protocols)),
	}

	for i := range protocols {
		p := &protocols[i]
		if err := Validate(p); err != nil {
			return nil, err
		}
		if _, dup := c.index[p.ID]; dup {
			return nil, fmt.Errorf("duplicate protocol id: %s", p.ID)
		}
		c.index[p.ID] = len(c.protocols)
		c.protocols = append(c.protocols, p.Clone())
	}

	return c, nil
}

// Validate checks a single protocol for structural problems.
func Validate(p *domain.Protocol) error {
	if p.ID == "" {
		return fmt.Errorf("protocol id is required")
	}
	if p.CancerType == "" {
		return fmt.Errorf("protocol %s: cancer type is required", p.ID)
	}
	if len(p.Stages) == 0 {
		return fmt.Errorf("protocol %s: at least one stage is required", p.ID)
	}
	if !p.TreatmentType.IsValid() {
		return fmt.Errorf("protocol %s: %w: %q", p.ID, domain.ErrInvalidTreatmentType, p.TreatmentType)
	}
	if len(p.TreatmentLines) == 0 {
		return fmt.Errorf("protocol %s: at least one treatment line is required", p.ID)
	}
	for _, line := range p.TreatmentLines {
		if !line.IsValid() {
			return fmt.Errorf("protocol %s: %w: %q", p.ID, domain.ErrInvalidTreatmentLine, line)
		}
	}
	if len(p.Regimen) == 0 {
		return fmt.Errorf("protocol %s: regimen must list at least one drug", p.ID)
	}
	for _, d := range p.Regimen {
		if !d.Route.IsValid() {
			return fmt.Errorf("protocol %s: drug %s: %w: %q", p.ID, d.Name, domain.ErrInvalidRoute, d.Route)
		}
	}
	if !p.EvidenceLevel.IsValid() {
		return fmt.Errorf("protocol %s: %w: %q", p.ID, domain.ErrInvalidEvidenceLevel, p.EvidenceLevel)
	}
	return nil
}

// Len returns the number of protocols.
func (c *Catalogue) Len() int {
	return len(c.protocols)
}

// Entries returns read-only pointers to the catalogue protocols in catalogue order.
// Callers must not modify the pointed-to values; use Clone for a private copy.
func (c *Catalogue) Entries() []*domain.Protocol {
	entries := make([]*domain.Protocol, len(c.protocols))
	for i := range c.protocols {
		entries[i] = &c.protocols[i]
	}
	return entries
}

// Protocols returns copies of every protocol.
func (c *Catalogue) Protocols() []domain.Protocol {
	out := make([]domain.Protocol, len(c.protocols))
	for i := range c.protocols {
		out[i] = c.protocols[i].Clone()
	}
	return out
}

// Get returns a copy of the protocol with the given id.
func (c *Catalogue) Get(id string) (domain.Protocol, error) {
	i, ok := c.index[id]
	if !ok {
		return domain.Protocol{}, fmt.Errorf("protocol %s: %w", id, domain.ErrNotFound)
	}
	return c.protocols[i].Clone(), nil
}

// ListProtocols implements domain.ProtocolSource.
func (c *Catalogue) ListProtocols(_ context.Context) ([]domain.Protocol, error) {
	return c.Protocols(), nil
}

// BuiltinSource serves the builtin sample catalogue.
type BuiltinSource struct{}

// ListProtocols implements domain.ProtocolSource.
func (BuiltinSource) ListProtocols(_ context.Context) ([]domain.Protocol, error) {
	return Builtin(), nil
}

// FileSource reads protocols from a YAML or JSON document.
type FileSource struct {
	Path string
}

// ListProtocols implements domain.ProtocolSource.
func (s FileSource) ListProtocols(_ context.Context) ([]domain.Protocol, error) {
	return LoadFile(s.Path)
}

// document is the on-disk layout of a catalogue file.
type document struct {
	Protocols []domain.Protocol `yaml:"protocols"`
}

// LoadFile reads a catalogue document. JSON documents are accepted as YAML.
func LoadFile(path string) ([]domain.Protocol, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalogue file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a catalogue document.
func Parse(data []byte) ([]domain.Protocol, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalogue: %w", err)
	}
	if len(doc.Protocols) == 0 {
		return nil, fmt.Errorf("catalogue document contains no protocols")
	}
	return doc.Protocols, nil
}

// Marshal encodes protocols as a YAML catalogue document.
func Marshal(protocols []domain.Protocol) ([]byte, error) {
	data, err := yaml.Marshal(document{Protocols: protocols})
	if err != nil {
		return nil, fmt.Errorf("failed to encode catalogue: %w", err)
	}
	return data, nil
}

// Load builds a catalogue from a source.
func Load(ctx context.Context, source domain.ProtocolSource, logger *logrus.Logger) (*Catalogue, error) {
	protocols, err := source.ListProtocols(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list protocols: %w", err)
	}

	c, err := New(protocols)
	if err != nil {
		return nil, fmt.Errorf("invalid protocol catalogue: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"protocols": c.Len(),
		"source":    fmt.Sprintf("%T", source),
	}).Info("Protocol catalogue loaded")

	return c, nil
}
