package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"meal-planner/internal/core/product"
	"meal-planner/internal/pkg/common"
)

// 支援的目錄來源
const (
	DriverEmbedded = "embedded"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	price INTEGER NOT NULL,
	image_url TEXT NOT NULL DEFAULT '',
	purchase_url TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT '',
	calories DOUBLE PRECISION NOT NULL DEFAULT 0,
	carb DOUBLE PRECISION NOT NULL DEFAULT 0,
	protein DOUBLE PRECISION NOT NULL DEFAULT 0,
	fat DOUBLE PRECISION NOT NULL DEFAULT 0,
	sodium DOUBLE PRECISION NOT NULL DEFAULT 0,
	sugar DOUBLE PRECISION NOT NULL DEFAULT 0,
	description TEXT NOT NULL DEFAULT '',
	brand TEXT NOT NULL DEFAULT '',
	weight TEXT NOT NULL DEFAULT '',
	rating DOUBLE PRECISION NOT NULL DEFAULT 0,
	review_count INTEGER NOT NULL DEFAULT 0,
	is_express_delivery BOOLEAN NOT NULL DEFAULT FALSE,
	goal TEXT NOT NULL DEFAULT '',
	position INTEGER NOT NULL DEFAULT -1
);

CREATE TABLE IF NOT EXISTS ingredient_products (
	ingredient TEXT PRIMARY KEY,
	product_id TEXT NOT NULL REFERENCES products(id)
);
`

const productColumns = `p.id, p.name, p.price, p.image_url, p.purchase_url, p.category,
	p.calories, p.carb, p.protein, p.fat, p.sodium, p.sugar,
	p.description, p.brand, p.weight, p.rating, p.review_count, p.is_express_delivery, p.goal, p.position`

// productRow 商品資料列
type productRow struct {
	ID                string  `db:"id"`
	Name              string  `db:"name"`
	Price             int     `db:"price"`
	ImageURL          string  `db:"image_url"`
	PurchaseURL       string  `db:"purchase_url"`
	Category          string  `db:"category"`
	Calories          float64 `db:"calories"`
	Carb              float64 `db:"carb"`
	Protein           float64 `db:"protein"`
	Fat               float64 `db:"fat"`
	Sodium            float64 `db:"sodium"`
	Sugar             float64 `db:"sugar"`
	Description       string  `db:"description"`
	Brand             string  `db:"brand"`
	Weight            string  `db:"weight"`
	Rating            float64 `db:"rating"`
	ReviewCount       int     `db:"review_count"`
	IsExpressDelivery bool    `db:"is_express_delivery"`
	Goal              string  `db:"goal"`
	Position          int     `db:"position"`
}

type mappingRow struct {
	Ingredient string `db:"ingredient"`
	productRow
}

func toRow(p common.Product, position int) productRow {
	return productRow{
		ID:                p.ID,
		Name:              p.Name,
		Price:             p.Price,
		ImageURL:          p.ImageURL,
		PurchaseURL:       p.PurchaseURL,
		Category:          p.Category,
		Calories:          p.Nutrition.Calories,
		Carb:              p.Nutrition.Carb,
		Protein:           p.Nutrition.Protein,
		Fat:               p.Nutrition.Fat,
		Sodium:            p.Nutrition.Sodium,
		Sugar:             p.Nutrition.Sugar,
		Description:       p.Description,
		Brand:             p.Brand,
		Weight:            p.Weight,
		Rating:            p.Rating,
		ReviewCount:       p.ReviewCount,
		IsExpressDelivery: p.IsExpressDelivery,
		Goal:              string(p.Goal),
		Position:          position,
	}
}

func (r productRow) toProduct() common.Product {
	return common.Product{
		ID:          r.ID,
		Name:        r.Name,
		Price:       r.Price,
		ImageURL:    r.ImageURL,
		PurchaseURL: r.PurchaseURL,
		Category:    r.Category,
		Nutrition: common.ProductNutrition{
			Calories: r.Calories,
			Carb:     r.Carb,
			Protein:  r.Protein,
			Fat:      r.Fat,
			Sodium:   r.Sodium,
			Sugar:    r.Sugar,
		},
		Description:       r.Description,
		Brand:             r.Brand,
		Weight:            r.Weight,
		Rating:            r.Rating,
		ReviewCount:       r.ReviewCount,
		IsExpressDelivery: r.IsExpressDelivery,
		Goal:              common.Goal(r.Goal),
	}
}

// CatalogStore 以 SQL 資料庫保存商品目錄
type CatalogStore struct {
	db *sqlx.DB
}

// NewCatalogStore 連線並建立資料表
func NewCatalogStore(ctx context.Context, driver, dsn string) (*CatalogStore, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported catalog driver %q", driver)
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if driver == DriverSQLite {
		// 記憶體資料庫每個連線都是獨立的
		db.SetMaxOpenConns(1)
	}

	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return &CatalogStore{db: db}, nil
}

// Close 關閉連線
func (s *CatalogStore) Close() error {
	return s.db.Close()
}

// Save 寫入整份目錄（已存在的商品會被更新）
func (s *CatalogStore) Save(ctx context.Context, catalog *product.Catalog) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	upsert := `INSERT INTO products (id, name, price, image_url, purchase_url, category,
		calories, carb, protein, fat, sodium, sugar, description, brand, weight, rating,
		review_count, is_express_delivery, goal, position)
	VALUES (:id, :name, :price, :image_url, :purchase_url, :category,
		:calories, :carb, :protein, :fat, :sodium, :sugar, :description, :brand, :weight, :rating,
		:review_count, :is_express_delivery, :goal, :position)
	ON CONFLICT (id) DO UPDATE SET
		name = excluded.name, price = excluded.price, image_url = excluded.image_url,
		purchase_url = excluded.purchase_url, category = excluded.category,
		calories = excluded.calories, carb = excluded.carb, protein = excluded.protein,
		fat = excluded.fat, sodium = excluded.sodium, sugar = excluded.sugar,
		description = excluded.description, brand = excluded.brand, weight = excluded.weight,
		rating = excluded.rating, review_count = excluded.review_count,
		is_express_delivery = excluded.is_express_delivery, goal = excluded.goal,
		position = excluded.position`

	// 先寫對應表的商品，列表商品再覆蓋排序
	for _, p := range catalog.Ingredients {
		if _, err := tx.NamedExecContext(ctx, upsert, toRow(p, -1)); err != nil {
			return fmt.Errorf("failed to save product %s: %w", p.ID, err)
		}
	}
	for i, p := range catalog.Products {
		if _, err := tx.NamedExecContext(ctx, upsert, toRow(p, i)); err != nil {
			return fmt.Errorf("failed to save product %s: %w", p.ID, err)
		}
	}

	mapping := tx.Rebind(`INSERT INTO ingredient_products (ingredient, product_id) VALUES (?, ?)
	ON CONFLICT (ingredient) DO UPDATE SET product_id = excluded.product_id`)
	for name, p := range catalog.Ingredients {
		if _, err := tx.ExecContext(ctx, mapping, name, p.ID); err != nil {
			return fmt.Errorf("failed to save mapping %s: %w", name, err)
		}
	}

	return tx.Commit()
}

// Load 讀取整份目錄
func (s *CatalogStore) Load(ctx context.Context) (*product.Catalog, error) {
	var rows []productRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT `+productColumns+` FROM products p WHERE p.position >= 0 ORDER BY p.position`)
	if err != nil {
		return nil, common.Wrap(common.ErrCatalogLoad, fmt.Errorf("failed to query products: %w", err))
	}

	var mappings []mappingRow
	err = s.db.SelectContext(ctx, &mappings,
		`SELECT m.ingredient, `+productColumns+` FROM ingredient_products m JOIN products p ON p.id = m.product_id`)
	if err != nil {
		return nil, common.Wrap(common.ErrCatalogLoad, fmt.Errorf("failed to query mappings: %w", err))
	}

	catalog := &product.Catalog{
		Products:    make([]common.Product, 0, len(rows)),
		Ingredients: make(map[string]common.Product, len(mappings)),
	}
	for _, r := range rows {
		catalog.Products = append(catalog.Products, r.toProduct())
	}
	for _, m := range mappings {
		catalog.Ingredients[m.Ingredient] = m.toProduct()
	}

	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	return catalog, nil
}

// LoadCatalog 依設定載入目錄，資料庫為空時以內建目錄初始化
func LoadCatalog(ctx context.Context, driver, dsn string) (*product.Catalog, error) {
	if driver == "" || driver == DriverEmbedded {
		return product.LoadEmbedded()
	}

	store, err := NewCatalogStore(ctx, driver, dsn)
	if err != nil {
		return nil, common.Wrap(common.ErrCatalogLoad, err)
	}
	defer store.Close()

	catalog, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(catalog.Products) > 0 || len(catalog.Ingredients) > 0 {
		common.LogInfo("從資料庫載入商品目錄",
			zap.String("driver", driver),
			zap.Int("products", len(catalog.Products)),
			zap.Int("ingredients", len(catalog.Ingredients)),
		)
		return catalog, nil
	}

	seed, err := product.LoadEmbedded()
	if err != nil {
		return nil, err
	}
	if err := store.Save(ctx, seed); err != nil {
		return nil, common.Wrap(common.ErrCatalogLoad, err)
	}
	common.LogInfo("商品目錄為空，已寫入內建目錄", zap.String("driver", driver))
	return seed, nil
}
