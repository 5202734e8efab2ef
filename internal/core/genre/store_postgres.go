package genre

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mangetsu-app/mangetsu/internal/platform/database/schema"
	"github.com/mangetsu-app/mangetsu/internal/platform/dberr"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListGenres returns all genres with the number of live titles carrying each.
func (repository *PostgresRepository) ListGenres(context context.Context) ([]*Genre, error) {
	query := fmt.Sprintf(`
		SELECT g.%s, g.%s, g.%s, COUNT(t.%s) AS title_count
		FROM %s g
		LEFT JOIN %s tg ON tg.%s = g.%s
		LEFT JOIN %s t ON t.%s = tg.%s AND t.%s IS NULL
		GROUP BY g.%s, g.%s, g.%s
		ORDER BY g.%s ASC
	`,
		schema.CoreGenre.ID, schema.CoreGenre.Name, schema.CoreGenre.Slug, schema.CoreTitle.ID,
		schema.CoreGenre.Table,
		schema.CoreTitleGenre.Table, schema.CoreTitleGenre.GenreID, schema.CoreGenre.ID,
		schema.CoreTitle.Table, schema.CoreTitle.ID, schema.CoreTitleGenre.TitleID, schema.CoreTitle.DeletedAt,
		schema.CoreGenre.ID, schema.CoreGenre.Name, schema.CoreGenre.Slug,
		schema.CoreGenre.Name,
	)

	rows, err := repository.db.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list_genres")
	}
	defer rows.Close()

	genres := make([]*Genre, 0)
	for rows.Next() {
		g := &Genre{}
		if err := rows.Scan(&g.ID, &g.Name, &g.Slug, &g.TitleCount); err != nil {
			return nil, dberr.Wrap(err, "scan_genre")
		}
		genres = append(genres, g)
	}

	return genres, nil
}

func (repository *PostgresRepository) GetGenreByID(context context.Context, id string) (*Genre, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s FROM %s WHERE %s = $1`,
		schema.CoreGenre.ID, schema.CoreGenre.Name, schema.CoreGenre.Slug,
		schema.CoreGenre.Table, schema.CoreGenre.ID)

	g := &Genre{}
	if err := repository.db.QueryRow(context, query, id).Scan(&g.ID, &g.Name, &g.Slug); err != nil {
		return nil, dberr.Wrap(err, "get_genre_by_id")
	}
	return g, nil
}

func (repository *PostgresRepository) GetGenreBySlug(context context.Context, slug string) (*Genre, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s FROM %s WHERE %s = $1`,
		schema.CoreGenre.ID, schema.CoreGenre.Name, schema.CoreGenre.Slug,
		schema.CoreGenre.Table, schema.CoreGenre.Slug)

	g := &Genre{}
	if err := repository.db.QueryRow(context, query, slug).Scan(&g.ID, &g.Name, &g.Slug); err != nil {
		return nil, dberr.Wrap(err, "get_genre_by_slug")
	}
	return g, nil
}

func (repository *PostgresRepository) Create(context context.Context, genre *Genre) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s) VALUES ($1, $2, $3)`,
		schema.CoreGenre.Table, schema.CoreGenre.ID, schema.CoreGenre.Name, schema.CoreGenre.Slug)

	if _, err := repository.db.Exec(context, query, genre.ID, genre.Name, genre.Slug); err != nil {
		return dberr.Wrap(err, "create_genre")
	}
	return nil
}

func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.CoreGenre.Table, schema.CoreGenre.ID)

	if _, err := repository.db.Exec(context, query, id); err != nil {
		return dberr.Wrap(err, "delete_genre")
	}
	return nil
}
