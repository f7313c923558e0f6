package repository

import (
	"context"
	"fmt"
	"reflect"
	"strconv"

	"github.com/go-redis/redis/v8"
	"github.com/mitchellh/mapstructure"

	"go-cultivation/dto"
	"go-cultivation/entities"
)

const ListingsCollection = "marketListings"

// activeListingsKey is a sorted set of active listing ids scored by listedAt.
const activeListingsKey = "marketListings:active"

// stringToIntHookFunc converts hash strings into the numeric listing fields.
func stringToIntHookFunc() mapstructure.DecodeHookFunc {
	return func(from reflect.Kind, to reflect.Kind, data interface{}) (interface{}, error) {
		if from != reflect.String {
			return data, nil
		}
		switch to {
		case reflect.Int:
			return strconv.Atoi(data.(string))
		case reflect.Int64:
			return strconv.ParseInt(data.(string), 10, 64)
		}
		return data, nil
	}
}

// DecodeListing turns an HGETALL result into a listing.
func DecodeListing(fields map[string]string) (*entities.MarketListing, error) {
	var l entities.MarketListing
	decoderConfig := &mapstructure.DecoderConfig{
		DecodeHook: stringToIntHookFunc(),
		Result:     &l,
		TagName:    "json",
	}
	decoder, err := mapstructure.NewDecoder(decoderConfig)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(fields); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}
	return &l, nil
}

func encodeListing(l *entities.MarketListing) map[string]interface{} {
	return map[string]interface{}{
		"listingId":    l.ListingID,
		"itemId":       l.ItemID,
		"itemName":     l.ItemName,
		"quantity":     l.Quantity,
		"pricePerItem": l.PricePerItem,
		"sellerId":     l.SellerID,
		"sellerName":   l.SellerName,
		"listedAt":     l.ListedAt,
		"status":       string(l.Status),
	}
}

// GetListing reads and watches a listing inside tx.
func GetListing(tx *Tx, listingID string) (*entities.MarketListing, error) {
	fields, err := tx.GetHash(ListingsCollection, listingID)
	if err != nil {
		return nil, err
	}
	return DecodeListing(fields)
}

// PutListing queues the listing and keeps the active index in step with
// its status.
func PutListing(tx *Tx, l *entities.MarketListing) {
	tx.SetHash(ListingsCollection, l.ListingID, encodeListing(l))
	id, score := l.ListingID, float64(l.ListedAt)
	active := l.Status == dto.ListingActive
	tx.Queue(func(pipe redis.Pipeliner) {
		if active {
			pipe.ZAdd(tx.Context(), activeListingsKey, &redis.Z{Score: score, Member: id})
		} else {
			pipe.ZRem(tx.Context(), activeListingsKey, id)
		}
	})
}

type ListingRepo struct {
	store *Store
}

func NewListingRepo(store *Store) *ListingRepo {
	return &ListingRepo{store: store}
}

// Get reads one listing outside any transaction.
func (r *ListingRepo) Get(ctx context.Context, listingID string) (*entities.MarketListing, error) {
	fields, err := r.store.rdb.HGetAll(ctx, DocKey(ListingsCollection, listingID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get listing %s: %w", listingID, err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}
	return DecodeListing(fields)
}

// ListActive returns up to limit active listings, newest first.
func (r *ListingRepo) ListActive(ctx context.Context, limit int) ([]*entities.MarketListing, error) {
	if limit <= 0 {
		return nil, nil
	}
	ids, err := r.store.rdb.ZRevRange(ctx, activeListingsKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("list active listings: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	pipe := r.store.rdb.Pipeline()
	cmds := make([]*redis.StringStringMapCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, DocKey(ListingsCollection, id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("load listings: %w", err)
	}

	listings := make([]*entities.MarketListing, 0, len(ids))
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			r.store.log.Sugar().Warnf("active index points at missing listing %s", ids[i])
			continue
		}
		l, err := DecodeListing(fields)
		if err != nil {
			return nil, err
		}
		if l.Active() {
			listings = append(listings, l)
		}
	}
	return listings, nil
}
