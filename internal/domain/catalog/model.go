// Package catalog manages art-print listings on the commerce platform and the
// batch job that attaches generated preview images to them.
package catalog

// Metafield is a namespaced custom attribute on a product.
type Metafield struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Value     string `json:"value"`
	Type      string `json:"type,omitempty"`
}

// Product is the catalog view used by the admin API and the sync job.
type Product struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Handle      string      `json:"handle,omitempty"`
	Description string      `json:"description,omitempty"`
	ImageURL    string      `json:"imageUrl,omitempty"`
	ImageAlt    string      `json:"imageAlt,omitempty"`
	ImageCount  int         `json:"imageCount"`
	Price       string      `json:"price,omitempty"`
	Metafields  []Metafield `json:"metafields,omitempty"`
}

// Metafield looks up a metafield by namespace and key.
func (p Product) Metafield(namespace, key string) (Metafield, bool) {
	for _, mf := range p.Metafields {
		if mf.Namespace == namespace && mf.Key == key {
			return mf, true
		}
	}
	return Metafield{}, false
}

// Image is an upload attached to a product.
type Image struct {
	FileName string
	MimeType string
	Data     []byte
}

// Details are the free-form listing attributes stored as metafields.
type Details struct {
	TitleTag       string `json:"titleTag"`
	DescriptionTag string `json:"descriptionTag"`
	Medium         string `json:"medium"`
	Authentication string `json:"authentication"`
	Width          string `json:"width"`
	Height         string `json:"height"`
	Dimensions     string `json:"dimensions"`
	Year           string `json:"year"`
}

// ProductInput is the create and update form.
type ProductInput struct {
	Title         string
	Description   string
	Price         string
	TrackQuantity bool
	Quantity      int
	Images        []Image
	Details       Details
}

// ProductDraft is what the platform adapter writes.
type ProductDraft struct {
	ID          string
	Title       string
	Description string
	Status      string
	ProductType string
	Vendor      string
	Metafields  []Metafield
}

// ListFilter narrows ListProducts. Zero values mean no limit.
type ListFilter struct {
	Query string
	Limit int
}
