package ebay

// ItemSummary represents a single item from the eBay Browse API search
// response. Only the fields the ranker consumes are decoded.
type ItemSummary struct {
	ItemID           string           `json:"itemId"`
	Title            string           `json:"title"`
	ShortDescription string           `json:"shortDescription,omitempty"`
	Price            ItemPrice        `json:"price"`
	ItemWebURL       string           `json:"itemWebUrl"`
	Image            *ItemImage       `json:"image,omitempty"`
	Seller           *ItemSeller      `json:"seller,omitempty"`
	Condition        string           `json:"condition"`
	ConditionID      string           `json:"conditionId"`
	BuyingOptions    []string         `json:"buyingOptions"`
	ShippingOptions  []ShippingOption `json:"shippingOptions,omitempty"`
	ItemLocation     *ItemLocation    `json:"itemLocation,omitempty"`
	Categories       []ItemCategory   `json:"categories,omitempty"`
}

// ItemPrice holds eBay price information.
type ItemPrice struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

// ItemImage holds eBay image information.
type ItemImage struct {
	ImageURL string `json:"imageUrl"`
}

// ItemSeller holds eBay seller information.
type ItemSeller struct {
	Username           string `json:"username"`
	FeedbackScore      int    `json:"feedbackScore"`
	FeedbackPercentage string `json:"feedbackPercentage"`
}

// ShippingOption holds eBay shipping information.
type ShippingOption struct {
	ShippingCost     *ItemPrice `json:"shippingCost,omitempty"`
	ShippingCostType string     `json:"shippingCostType,omitempty"`
}

// ItemLocation holds the listing's ship-from location.
type ItemLocation struct {
	City            string `json:"city,omitempty"`
	StateOrProvince string `json:"stateOrProvince,omitempty"`
	Country         string `json:"country,omitempty"`
}

// ItemCategory holds eBay category information.
type ItemCategory struct {
	CategoryID   string `json:"categoryId"`
	CategoryName string `json:"categoryName,omitempty"`
}
