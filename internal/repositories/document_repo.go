package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/expert-marketplace/backend/internal/models"
)

const documentColumns = `id, contract_id, document_type, content, status,
	       buyer_signed_at, buyer_signature_name, buyer_signature_ip,
	       expert_signed_at, expert_signature_name, expert_signature_ip,
	       created_at, updated_at`

type DocumentRepo struct {
	pool *pgxpool.Pool
}

func NewDocumentRepo(pool *pgxpool.Pool) *DocumentRepo {
	return &DocumentRepo{pool: pool}
}

func (r *DocumentRepo) Create(ctx context.Context, q Querier, d *models.ContractDocument) error {
	return q.QueryRow(ctx, `
		INSERT INTO contract_documents (contract_id, document_type, content, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, d.ContractID, d.DocumentType, d.Content, d.Status).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
}

func scanDocument(row interface{ Scan(...any) error }, d *models.ContractDocument) error {
	return row.Scan(&d.ID, &d.ContractID, &d.DocumentType, &d.Content, &d.Status,
		&d.BuyerSignedAt, &d.BuyerSignatureName, &d.BuyerSignatureIP,
		&d.ExpertSignedAt, &d.ExpertSignatureName, &d.ExpertSignatureIP,
		&d.CreatedAt, &d.UpdatedAt)
}

func (r *DocumentRepo) GetByID(ctx context.Context, q Querier, id uuid.UUID) (*models.ContractDocument, error) {
	var d models.ContractDocument
	row := q.QueryRow(ctx, `SELECT `+documentColumns+` FROM contract_documents WHERE id = $1`, id)
	if err := scanDocument(row, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// GetByIDForUpdate locks the document row so concurrent sign attempts
// serialize inside the signing transaction.
func (r *DocumentRepo) GetByIDForUpdate(ctx context.Context, q Querier, id uuid.UUID) (*models.ContractDocument, error) {
	var d models.ContractDocument
	row := q.QueryRow(ctx, `SELECT `+documentColumns+` FROM contract_documents WHERE id = $1 FOR UPDATE`, id)
	if err := scanDocument(row, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DocumentRepo) GetByContractAndType(ctx context.Context, q Querier, contractID uuid.UUID, docType string) (*models.ContractDocument, error) {
	var d models.ContractDocument
	row := q.QueryRow(ctx, `
		SELECT `+documentColumns+` FROM contract_documents
		WHERE contract_id = $1 AND document_type = $2
	`, contractID, docType)
	if err := scanDocument(row, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DocumentRepo) ListByContract(ctx context.Context, contractID uuid.UUID) ([]models.ContractDocument, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+documentColumns+` FROM contract_documents
		WHERE contract_id = $1 ORDER BY created_at ASC
	`, contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []models.ContractDocument
	for rows.Next() {
		var d models.ContractDocument
		if err := scanDocument(rows, &d); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, nil
}

func (r *DocumentRepo) RecordSignature(ctx context.Context, q Querier, id uuid.UUID, party, name, ip string, at time.Time) error {
	var sql string
	switch party {
	case models.SignerBuyer:
		sql = `UPDATE contract_documents SET buyer_signed_at = $1, buyer_signature_name = $2, buyer_signature_ip = $3, updated_at = now() WHERE id = $4`
	case models.SignerExpert:
		sql = `UPDATE contract_documents SET expert_signed_at = $1, expert_signature_name = $2, expert_signature_ip = $3, updated_at = now() WHERE id = $4`
	}
	_, err := q.Exec(ctx, sql, at, name, ip, id)
	return err
}

func (r *DocumentRepo) UpdateStatus(ctx context.Context, q Querier, id uuid.UUID, status string) error {
	_, err := q.Exec(ctx, `UPDATE contract_documents SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	return err
}

func (r *DocumentRepo) UpdateContent(ctx context.Context, q Querier, id uuid.UUID, content string) error {
	_, err := q.Exec(ctx, `UPDATE contract_documents SET content = $1, updated_at = now() WHERE id = $2`, content, id)
	return err
}
