package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"sva/internal/domain"
	"sva/internal/port"
)

// maxSearchWords bounds the ILIKE clauses built by SearchByName.
const maxSearchWords = 5

type productRepo struct {
	db queryer
}

// NewProductRepo creates a new PostgreSQL-backed ProductRepository.
func NewProductRepo(db *sqlx.DB) port.ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Create(ctx context.Context, p *domain.Product) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	query := `INSERT INTO products (id, code, name, unit, unit_price, class, created_at, updated_at)
		VALUES (:id, :code, :name, :unit, :unit_price, :class, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("productRepo.Create: %w", err)
	}
	return nil
}

func (r *productRepo) FindByCode(ctx context.Context, code string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, "SELECT * FROM products WHERE code = $1 AND code <> ''", code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("productRepo.FindByCode: %w", err)
	}
	return &p, nil
}

func (r *productRepo) SearchByName(ctx context.Context, name string, limit int) ([]domain.Product, error) {
	words := searchWords(name)
	if len(words) == 0 {
		return []domain.Product{}, nil
	}

	clauses := make([]string, len(words))
	args := make([]interface{}, 0, len(words)+1)
	for i, w := range words {
		clauses[i] = fmt.Sprintf("name ILIKE $%d", i+1)
		args = append(args, "%"+w+"%")
	}
	args = append(args, limit)

	query := fmt.Sprintf("SELECT * FROM products WHERE %s ORDER BY name LIMIT $%d",
		strings.Join(clauses, " OR "), len(args))

	var products []domain.Product
	if err := r.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, fmt.Errorf("productRepo.SearchByName: %w", err)
	}
	return products, nil
}

// searchWords returns the distinct words of name with at least three runes,
// escaped for use inside an ILIKE pattern.
func searchWords(name string) []string {
	escaper := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	seen := map[string]bool{}
	var out []string
	for _, w := range strings.Fields(strings.ToLower(name)) {
		w = strings.Trim(w, ".,;:()[]/-")
		if len([]rune(w)) < 3 || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, escaper.Replace(w))
		if len(out) == maxSearchWords {
			break
		}
	}
	return out
}
