package apitest

import (
	"fmt"
	"time"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
)

// seedEpoch keeps seeded timestamps, and so the ASC/DESC orderings,
// deterministic.
var seedEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func (s *Server) AddCategory(in clients.CategoryInput) clients.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addCategoryLocked(in)
}

func (s *Server) AddProduct(in clients.ProductInput) clients.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addProductLocked(in)
}

// SeedProducts adds n active products named "<prefix> 1".."<prefix> n" to
// categoryID (0 means no category), priced 10000 apart.
func (s *Server) SeedProducts(n int, categoryID int64, prefix string) []clients.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]clients.Product, 0, n)
	for i := 1; i <= n; i++ {
		in := clients.ProductInput{
			Name:   fmt.Sprintf("%s %d", prefix, i),
			Slug:   fmt.Sprintf("%s-%d", slugify(prefix), i),
			Price:  clients.AmountFromInt(int64(i) * 10000),
			Stock:  10,
			Status: clients.ProductActive,
			Image:  fmt.Sprintf("/uploads/%s-%d.webp", slugify(prefix), i),
		}
		if categoryID != 0 {
			id := categoryID
			in.CategoryID = &id
		}
		out = append(out, s.addProductLocked(in))
	}
	return out
}

func (s *Server) addCategoryLocked(in clients.CategoryInput) clients.Category {
	id := s.newID()
	ts := seedEpoch.Add(time.Duration(id) * time.Minute)
	c := clients.Category{ID: id, Name: in.Name, Slug: in.Slug, Description: in.Description, CreatedAt: ts, UpdatedAt: ts}
	s.categories = append(s.categories, c)
	return c
}

func (s *Server) addProductLocked(in clients.ProductInput) clients.Product {
	p := productFromInput(in)
	p.ID = s.newID()
	p.CreatedAt = seedEpoch.Add(time.Duration(p.ID) * time.Minute)
	p.UpdatedAt = p.CreatedAt
	s.products = append(s.products, p)
	return p
}

func productFromInput(in clients.ProductInput) clients.Product {
	return clients.Product{
		Name:          in.Name,
		Slug:          in.Slug,
		Description:   in.Description,
		Price:         in.Price,
		OriginalPrice: in.OriginalPrice,
		CategoryID:    in.CategoryID,
		Stock:         in.Stock,
		Status:        in.Status,
		Image:         in.Image,
		Images:        in.Images,
	}
}

func slugify(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			out = append(out, r+'a'-'A')
		case r == ' ':
			out = append(out, '-')
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
