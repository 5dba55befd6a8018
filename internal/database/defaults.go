package database

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/jask/previewkit/internal/database/repository"
)

// DefaultProducts is the catalog seeded into new databases.
var DefaultProducts = []repository.Product{
	{SKU: "TEA-001", Name: "Sencha Green Tea", PriceCents: 1250},
	{SKU: "MUG-002", Name: "Stoneware Mug", PriceCents: 1800},
	{SKU: "KTL-003", Name: "Gooseneck Kettle", PriceCents: 6400},
	{SKU: "INF-004", Name: "Steel Infuser", PriceCents: 700},
	{SKU: "TIN-005", Name: "Airtight Tin", PriceCents: 950},
}

// ProductID is the stable id for a SKU.
func ProductID(sku string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("product:"+sku)).String()
}

// UserID is the stable id for a username.
func UserID(username string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("user:"+username)).String()
}

// SeedDefaults ensures the default catalog exists. It is idempotent and safe
// to run on every startup.
func SeedDefaults(ctx context.Context, db *sql.DB) error {
	repo := repository.NewProductRepo(db)
	for idx, p := range DefaultProducts {
		p.ID = ProductID(p.SKU)
		p.SortOrder = idx
		if err := repo.Upsert(ctx, p); err != nil {
			return err
		}
	}
	return nil
}
