package product

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"

	"meal-planner/internal/pkg/common"
)

//go:embed data/catalog.json
var embeddedCatalog []byte

// Catalog 商品目錄：商品列表與食材對應表
type Catalog struct {
	Products    []common.Product          `json:"products"`
	Ingredients map[string]common.Product `json:"ingredients"`
}

// LoadEmbedded 載入內建目錄
func LoadEmbedded() (*Catalog, error) {
	return LoadJSON(bytes.NewReader(embeddedCatalog))
}

// LoadJSON 從 JSON 載入目錄
func LoadJSON(r io.Reader) (*Catalog, error) {
	c, err := common.DecodeJSON[Catalog](r)
	if err != nil {
		return nil, common.Wrap(common.ErrCatalogLoad, err)
	}
	if c.Ingredients == nil {
		c.Ingredients = map[string]common.Product{}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate 每個商品都需要 id、名稱與正數價格
func (c *Catalog) Validate() error {
	check := func(where string, p common.Product) error {
		if p.ID == "" || p.Name == "" {
			return common.Wrap(common.ErrCatalogLoad, fmt.Errorf("%s: product missing id or name", where))
		}
		if p.Price <= 0 {
			return common.Wrap(common.ErrCatalogLoad, fmt.Errorf("%s: product %s has non-positive price", where, p.ID))
		}
		return nil
	}

	for i, p := range c.Products {
		if err := check(fmt.Sprintf("products[%d]", i), p); err != nil {
			return err
		}
	}
	for name, p := range c.Ingredients {
		if err := check("ingredients."+name, p); err != nil {
			return err
		}
	}
	return nil
}

// ByID 依 id 查找商品
func (c *Catalog) ByID(id string) (common.Product, bool) {
	for _, p := range c.Products {
		if p.ID == id {
			return p, true
		}
	}
	for _, p := range c.Ingredients {
		if p.ID == id {
			return p, true
		}
	}
	return common.Product{}, false
}

// Size 商品與對應表數量
func (c *Catalog) Size() (products, ingredients int) {
	return len(c.Products), len(c.Ingredients)
}
