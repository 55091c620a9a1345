package models

// Core domain models

// BookItem is the payload shared by both backends
type BookItem struct {
	Title       string `json:"title" bson:"title"`
	Description string `json:"description" bson:"description"`
	Completed   bool   `json:"completed" bson:"completed"`
}

// Book represents a row of the relational book table
type Book struct {
	ID          int64  `json:"id" gorm:"primaryKey;autoIncrement;column:id"`
	Title       string `json:"title" gorm:"type:text;not null;column:title"`
	Description string `json:"description" gorm:"type:text;not null;column:description"`
	Completed   bool   `json:"completed" gorm:"not null;default:false;column:completed"`
}

// TableName keeps the table name singular
func (Book) TableName() string {
	return "book"
}

// Item returns the payload fields of the row
func (b Book) Item() BookItem {
	return BookItem{
		Title:       b.Title,
		Description: b.Description,
		Completed:   b.Completed,
	}
}

// BookDocument represents a document of the book collection.
// ID is the hex form of the store-assigned ObjectID.
type BookDocument struct {
	ID          string `json:"id" bson:"-"`
	Title       string `json:"title" bson:"title"`
	Description string `json:"description" bson:"description"`
	Completed   bool   `json:"completed" bson:"completed"`
}

// Item returns the payload fields of the document
func (d BookDocument) Item() BookItem {
	return BookItem{
		Title:       d.Title,
		Description: d.Description,
		Completed:   d.Completed,
	}
}
