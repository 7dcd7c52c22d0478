package handlers

import "github.com/developia-II/marketplace-catalog/internal/models"

// ProductView is a product as the front ends render it.
type ProductView struct {
	models.Product
	PriceLabel string `json:"priceLabel"`
}

type CategoryView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// DashboardProduct is a row of the dashboard product table.
type DashboardProduct struct {
	ProductView
	CategoryName string `json:"categoryName"`
}

func productView(p models.Product) ProductView {
	return ProductView{Product: p, PriceLabel: p.PriceLabel()}
}

func productViews(products []models.Product) []ProductView {
	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, productView(p))
	}
	return views
}

func categoryView(c models.Category) CategoryView {
	return CategoryView{ID: c.ID.Hex(), Name: c.Name, Icon: c.IconKey()}
}

func categoryViews(categories []models.Category) []CategoryView {
	views := make([]CategoryView, 0, len(categories))
	for _, c := range categories {
		views = append(views, categoryView(c))
	}
	return views
}

// dashboardProducts resolves category names, showing the raw categoryId for
// products whose category no longer exists.
func dashboardProducts(products []models.Product, categories []models.Category) []DashboardProduct {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID.Hex()] = c.Name
	}
	rows := make([]DashboardProduct, 0, len(products))
	for _, p := range products {
		name, ok := names[p.CategoryID]
		if !ok {
			name = p.CategoryID
		}
		rows = append(rows, DashboardProduct{ProductView: productView(p), CategoryName: name})
	}
	return rows
}
