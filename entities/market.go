package entities

import (
	"time"

	"go-cultivation/dto"
)

// MarketListing is a persisted sell order. Fields carry json tags because
// the listing hash is decoded with mapstructure using TagName "json".
type MarketListing struct {
	ListingID    string            `json:"listingId"`
	ItemID       string            `json:"itemId"`
	ItemName     string            `json:"itemName"`
	Quantity     int               `json:"quantity"`
	PricePerItem int               `json:"pricePerItem"`
	SellerID     string            `json:"sellerId"`
	SellerName   string            `json:"sellerName"`
	ListedAt     int64             `json:"listedAt"`
	Status       dto.ListingStatus `json:"status"`
}

func (l *MarketListing) Active() bool { return l.Status == dto.ListingActive }

func (l *MarketListing) ListedTime() time.Time { return time.UnixMilli(l.ListedAt) }

// Trade is one completed purchase, appended to the ledger.
type Trade struct {
	ListingID    string
	BuyerID      string
	SellerID     string
	ItemID       string
	Quantity     int
	PricePerItem int
	TradedAt     time.Time
}

// ChatMessage is one line of the global chat.
type ChatMessage struct {
	MessageID  string `json:"messageId"`
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName"`
	Text       string `json:"text"`
	Timestamp  int64  `json:"timestamp"`
}
