package inventory

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// productForm mirrors the create/edit product form. Numeric fields arrive as
// strings and are decoded before validation; a non-numeric value validates as
// zero and fails the gte rule with the field's message.
type productForm struct {
	Name        string  `validate:"required"`
	Description string  `validate:"omitempty,max=500"`
	Price       float64 `validate:"gte=1"`
	Stock       int     `validate:"gte=1"`
	Delivered   int     `validate:"gte=1"`
	SKU         string  `validate:"required,min=5,max=16"`
	Department  string  `validate:"required"`
	Supplier    string  `validate:"required"`
	Image       string  `validate:"omitempty,url"`
}

func parseProductForm(r *http.Request) productForm {
	price, _ := strconv.ParseFloat(strings.TrimSpace(r.PostFormValue("price")), 64)
	stock, _ := strconv.Atoi(strings.TrimSpace(r.PostFormValue("stock")))
	delivered, _ := strconv.Atoi(strings.TrimSpace(r.PostFormValue("delivered")))
	return productForm{
		Name:        strings.TrimSpace(r.PostFormValue("name")),
		Description: strings.TrimSpace(r.PostFormValue("description")),
		Price:       price,
		Stock:       stock,
		Delivered:   delivered,
		SKU:         strings.TrimSpace(r.PostFormValue("sku")),
		Department:  strings.TrimSpace(r.PostFormValue("department")),
		Supplier:    strings.TrimSpace(r.PostFormValue("supplier")),
		Image:       strings.TrimSpace(r.PostFormValue("image")),
	}
}

func (f productForm) toInput() ProductInput {
	return ProductInput{
		Name:        f.Name,
		Description: f.Description,
		Price:       f.Price,
		Stock:       f.Stock,
		Delivered:   f.Delivered,
		SKU:         f.SKU,
		Department:  f.Department,
		Supplier:    f.Supplier,
		ImageURL:    f.Image,
	}
}

func productFormErrors(err error) map[string]string {
	fieldErrors := make(map[string]string)
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		fieldErrors["general"] = "Invalid form submission."
		return fieldErrors
	}
	for _, fe := range verrs {
		fieldErrors[fe.Field()] = productFieldMessage(fe)
	}
	return fieldErrors
}

func productFieldMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "Name":
		return "Product name is required"
	case "Description":
		return "Description must be at most 500 characters"
	case "Price":
		return "Product price is required"
	case "Stock":
		return "Product stock is required"
	case "Delivered":
		return "Product total delivered is required"
	case "SKU":
		if fe.Tag() == "max" {
			return "SKU must be at most 16 characters"
		}
		return "SKU must be at least 5 characters"
	case "Department":
		return "Product department is required"
	case "Supplier":
		return "Product supplier is required"
	case "Image":
		return "Must be a valid URL"
	default:
		return "Invalid value"
	}
}
