package enums

import "fmt"

// Resource names a back-office collection exposed by the API. The value is
// the URL path segment.
type Resource string

const (
	ResourceProduct         Resource = "product"
	ResourceProductCategory Resource = "product-category"
	ResourceOrder           Resource = "order"
	ResourceCustomer        Resource = "customer"
	ResourceEmployee        Resource = "employee"
	ResourceSupplier        Resource = "supplier"
	ResourcePurchase        Resource = "purchase"
	ResourcePerson          Resource = "person"
	ResourceUser            Resource = "user"
	ResourceUserType        Resource = "user-type"
)

var validResources = []Resource{
	ResourceProduct,
	ResourceProductCategory,
	ResourceOrder,
	ResourceCustomer,
	ResourceEmployee,
	ResourceSupplier,
	ResourcePurchase,
	ResourcePerson,
	ResourceUser,
	ResourceUserType,
}

func (r Resource) IsValid() bool {
	for _, candidate := range validResources {
		if candidate == r {
			return true
		}
	}
	return false
}

// Deletable reports whether the API accepts DELETE /{resource}/{id}.
func (r Resource) Deletable() bool {
	switch r {
	case ResourceProduct, ResourceProductCategory, ResourceOrder, ResourceSupplier, ResourcePurchase, ResourcePerson:
		return true
	default:
		return false
	}
}

// Resources returns every known resource in display order.
func Resources() []Resource {
	out := make([]Resource, len(validResources))
	copy(out, validResources)
	return out
}

func ParseResource(value string) (Resource, error) {
	for _, candidate := range validResources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid resource %q", value)
}
