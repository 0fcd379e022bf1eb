package domain

const EntityProduct EntityType = "product"

// Product is the demo entity (table "product").
type Product struct {
	ID         int64  `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	CategoryID int64  `gorm:"column:category_id;not null;default:0" json:"category_id"`
	Name       string `gorm:"column:name;not null;default:''" json:"name"`
}

func (Product) TableName() string { return "product" }

func (p *Product) EntityType() EntityType { return EntityProduct }
func (p *Product) PrimaryKey() int64      { return p.ID }
func (p *Product) SetPrimaryKey(id int64) { p.ID = id }
func (p *Product) CloneRecord() Record    { return p.Clone() }

// Clone returns an independent copy.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

// View captures the product's fields at a point in time.
func (p *Product) View() ProductView {
	if p == nil {
		return ProductView{}
	}
	return ProductView{ID: p.ID, CategoryID: p.CategoryID, Name: p.Name}
}

// ProductView is a value copy of a product's fields, safe to compare and keep.
type ProductView struct {
	ID         int64  `json:"id"`
	CategoryID int64  `json:"categoryId"`
	Name       string `json:"name"`
}

func ProductKey(id int64) EntityKey {
	return EntityKey{Type: EntityProduct, ID: id}
}
