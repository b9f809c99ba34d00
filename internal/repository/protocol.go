// Package repository persists the protocol catalogue in PostgreSQL.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/oncology-cds-engine/internal/catalogue"
	"github.com/oncology-cds-engine/internal/domain"
)

// ProtocolRepository handles protocol catalogue persistence. Each protocol is stored as
// a JSONB definition next to the columns used for filtering.
type ProtocolRepository struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

var _ domain.ProtocolRepository = (*ProtocolRepository)(nil)

// NewProtocolRepository creates a new protocol repository
func NewProtocolRepository(db *pgxpool.Pool, logger *logrus.Logger) *ProtocolRepository {
	return &ProtocolRepository{
		db:  db,
		log: logger,
	}
}

// SaveProtocol validates and upserts a protocol.
func (r *ProtocolRepository) SaveProtocol(ctx context.Context, protocol *domain.Protocol) error {
	if protocol == nil {
		return fmt.Errorf("protocol is required")
	}
	if err := catalogue.Validate(protocol); err != nil {
		return fmt.Errorf("invalid protocol: %w", err)
	}

	definition, err := json.Marshal(protocol)
	if err != nil {
		return fmt.Errorf("encoding protocol %s: %w", protocol.ID, err)
	}

	query := `
		INSERT INTO protocols (id, name, cancer_type, treatment_type, evidence_level, definition)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			cancer_type = EXCLUDED.cancer_type,
			treatment_type = EXCLUDED.treatment_type,
			evidence_level = EXCLUDED.evidence_level,
			definition = EXCLUDED.definition,
			updated_at = NOW()`

	_, err = r.db.Exec(ctx, query,
		protocol.ID,
		protocol.Name,
		protocol.CancerType,
		string(protocol.TreatmentType),
		string(protocol.EvidenceLevel),
		definition,
	)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"protocol_id": protocol.ID,
			"error":       err,
		}).Error("Failed to save protocol")
		return fmt.Errorf("saving protocol: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"protocol_id": protocol.ID,
		"cancer_type": protocol.CancerType,
	}).Debug("Protocol saved")
	return nil
}

// GetProtocol retrieves a protocol by id.
func (r *ProtocolRepository) GetProtocol(ctx context.Context, id string) (*domain.Protocol, error) {
	var definition []byte
	err := r.db.QueryRow(ctx, "SELECT definition FROM protocols WHERE id = $1", id).Scan(&definition)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("protocol %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("getting protocol: %w", err)
	}
	return decodeProtocol(definition)
}

// ListProtocols implements domain.ProtocolSource, ordered by id.
func (r *ProtocolRepository) ListProtocols(ctx context.Context) ([]domain.Protocol, error) {
	rows, err := r.db.Query(ctx, "SELECT definition FROM protocols ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing protocols: %w", err)
	}
	defer rows.Close()

	var protocols []domain.Protocol
	for rows.Next() {
		var definition []byte
		if err := rows.Scan(&definition); err != nil {
			return nil, fmt.Errorf("scanning protocol: %w", err)
		}
		p, err := decodeProtocol(definition)
		if err != nil {
			return nil, err
		}
		protocols = append(protocols, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating protocols: %w", err)
	}
	return protocols, nil
}

// ListByCancerType returns the protocols of one cancer type, case-insensitively.
func (r *ProtocolRepository) ListByCancerType(ctx context.Context, cancerType string) ([]domain.Protocol, error) {
	rows, err := r.db.Query(ctx,
		"SELECT definition FROM protocols WHERE LOWER(cancer_type) = LOWER($1) ORDER BY id", cancerType)
	if err != nil {
		return nil, fmt.Errorf("listing protocols by cancer type: %w", err)
	}
	defer rows.Close()

	protocols, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Protocol, error) {
		var definition []byte
		if err := row.Scan(&definition); err != nil {
			return domain.Protocol{}, err
		}
		p, err := decodeProtocol(definition)
		if err != nil {
			return domain.Protocol{}, err
		}
		return *p, nil
	})
	if err != nil {
		return nil, fmt.Errorf("collecting protocols: %w", err)
	}
	return protocols, nil
}

// DeleteProtocol removes a protocol. Deleting an unknown id reports ErrNotFound.
func (r *ProtocolRepository) DeleteProtocol(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM protocols WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting protocol: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("protocol %s: %w", id, domain.ErrNotFound)
	}
	r.log.WithField("protocol_id", id).Info("Protocol deleted")
	return nil
}

// Seed stores every protocol in a single transaction.
func (r *ProtocolRepository) Seed(ctx context.Context, protocols []domain.Protocol) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("starting seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for i := range protocols {
		p := &protocols[i]
		if err := catalogue.Validate(p); err != nil {
			return 0, fmt.Errorf("invalid protocol: %w", err)
		}
		definition, err := json.Marshal(p)
		if err != nil {
			return 0, fmt.Errorf("encoding protocol %s: %w", p.ID, err)
		}
		batch.Queue(`
			INSERT INTO protocols (id, name, cancer_type, treatment_type, evidence_level, definition)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET definition = EXCLUDED.definition, updated_at = NOW()`,
			p.ID, p.Name, p.CancerType, string(p.TreatmentType), string(p.EvidenceLevel), definition)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return 0, fmt.Errorf("seeding protocols: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing seed: %w", err)
	}

	r.log.WithField("protocols", len(protocols)).Info("Protocol catalogue seeded")
	return len(protocols), nil
}

func decodeProtocol(definition []byte) (*domain.Protocol, error) {
	var p domain.Protocol
	if err := json.Unmarshal(definition, &p); err != nil {
		return nil, fmt.Errorf("decoding protocol definition: %w", err)
	}
	return &p, nil
}
