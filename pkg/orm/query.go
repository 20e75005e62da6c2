// Package orm holds small query helpers shared by the repositories.
package orm

import (
	"strconv"

	"gorm.io/gorm"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// Pagination is the metadata block of a paginated response.
type Pagination struct {
	Page     int   `json:"page"`
	PerPage  int   `json:"per_page"`
	Total    int64 `json:"total"`
	LastPage int   `json:"last_page"`
}

// Page is a requested page, normalised.
type Page struct {
	Number  int
	PerPage int
}

// ParsePage reads ?page= and ?per_page= values, clamping junk to defaults.
func ParsePage(page, perPage string) Page {
	p := Page{Number: 1, PerPage: defaultPerPage}
	if n, err := strconv.Atoi(page); err == nil && n > 0 {
		p.Number = n
	}
	if n, err := strconv.Atoi(perPage); err == nil && n > 0 {
		p.PerPage = min(n, maxPerPage)
	}
	return p
}

// Paginate counts q, then loads one page of it into dest. The page scopes
// (typically Preload) apply to the page query only, never to the count.
func Paginate(q *gorm.DB, p Page, dest any, page ...Scope) (Pagination, error) {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.PerPage < 1 {
		p.PerPage = defaultPerPage
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return Pagination{}, err
	}
	err := q.Session(&gorm.Session{}).
		Scopes(page...).
		Offset((p.Number - 1) * p.PerPage).
		Limit(p.PerPage).
		Find(dest).Error
	if err != nil {
		return Pagination{}, err
	}

	last := int((total + int64(p.PerPage) - 1) / int64(p.PerPage))
	if last == 0 {
		last = 1
	}
	return Pagination{Page: p.Number, PerPage: p.PerPage, Total: total, LastPage: last}, nil
}

// Scope is a reusable query fragment.
type Scope = func(*gorm.DB) *gorm.DB

// WhereIf applies cond only when apply is true.
func WhereIf(apply bool, cond string, args ...any) Scope {
	return func(db *gorm.DB) *gorm.DB {
		if !apply {
			return db
		}
		return db.Where(cond, args...)
	}
}

// Latest orders by creation time, newest first.
func Latest(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("id DESC")
}

// Preload loads association name, optionally with conditions.
func Preload(name string, conds ...any) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Preload(name, conds...)
	}
}
