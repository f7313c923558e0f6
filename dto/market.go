package dto

type ListingStatus string

const (
	ListingActive  ListingStatus = "active"
	ListingSold    ListingStatus = "sold"
	ListingRemoved ListingStatus = "removed"
)

type CreatePlayerRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Token    string `json:"token"`
}

type ListingView struct {
	ListingID    string `json:"listingId"`
	ItemID       string `json:"itemId"`
	ItemName     string `json:"itemName"`
	Quantity     int    `json:"quantity"`
	PricePerItem int    `json:"pricePerItem"`
	SellerID     string `json:"sellerId"`
	SellerName   string `json:"sellerName"`
	ListedAt     int64  `json:"listedAt"`
}

type GetListings struct {
	Listings []ListingView `json:"listings"`
}

type SectView struct {
	SectID      string       `json:"sectId"`
	Name        string       `json:"name"`
	FounderID   string       `json:"founderId"`
	FounderName string       `json:"founderName"`
	Description string       `json:"description"`
	Members     []SectMember `json:"members"`
}

type SectMember struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

type GetSectList struct {
	Sects []SectView `json:"sects"`
}

type PlayerSummary struct {
	PlayerID string `json:"playerId"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Class    string `json:"class"`
	Realm    string `json:"realm"`
	Level    int    `json:"level"`
	Sect     string `json:"sect,omitempty"`
}

type OnlineResponse struct {
	Online int `json:"online"`
}
