package flyer

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

var validate = validator.New()

// ItemsResult is the outcome of parsing a products response
type ItemsResult struct {
	Items []Item
	// Malformed holds one ErrMalformedItem-wrapped error per skipped record
	Malformed []error
}

// ParseItems parses a products response. The body must be a JSON array;
// anything else fails with ErrLoadFailed. Records that cannot be turned
// into a valid Item are skipped and reported in Malformed.
func ParseItems(data []byte) (*ItemsResult, error) {
	root, err := parseArray(data)
	if err != nil {
		return nil, err
	}

	result := &ItemsResult{Items: []Item{}}
	for i, rec := range root.Array() {
		item, err := parseItem(rec)
		if err != nil {
			result.Malformed = append(result.Malformed, errors.Wrapf(err, "record %d", i))
			continue
		}
		result.Items = append(result.Items, item)
	}

	return result, nil
}

func parseItem(rec gjson.Result) (Item, error) {
	if !rec.IsObject() {
		return Item{}, errors.Wrap(ErrMalformedItem, "record is not an object")
	}

	id := rec.Get("id")
	if id.Type != gjson.Number {
		return Item{}, errors.Wrap(ErrMalformedItem, "missing numeric id")
	}

	item := Item{
		ID:              id.Int(),
		Type:            ItemType(number(rec, "item_type")),
		Name:            rec.Get("name").String(),
		Rect:            rectOf(rec),
		WebURL:          rec.Get("web_url").String(),
		PageDestination: int(number(rec, "page_destination")),
	}

	if pct, ok := optionalNumber(rec, "percent_off"); ok {
		item.PercentOff = &pct
	}

	if coupons := rec.Get("coupons"); coupons.IsArray() {
		for _, c := range coupons.Array() {
			item.Coupons = append(item.Coupons, Coupon{ID: couponID(c)})
		}
	}

	if err := validate.Struct(item); err != nil {
		return Item{}, errors.Wrapf(ErrMalformedItem, "item %d (%s): %v", item.ID, item.Type, err)
	}

	return item, nil
}

// ParsePages parses a pages response. Page numbers are 1-based positions
// in the response, so a non-object record fails the whole response rather
// than shifting later pages.
func ParsePages(data []byte) ([]Page, error) {
	root, err := parseArray(data)
	if err != nil {
		return nil, err
	}

	records := root.Array()
	pages := make([]Page, 0, len(records))
	for i, rec := range records {
		if !rec.IsObject() {
			return nil, errors.Wrapf(ErrLoadFailed, "page record %d is not an object", i)
		}
		pages = append(pages, Page{Number: i + 1, Rect: rectOf(rec)})
	}

	return pages, nil
}

// ParseCoupons parses a clipped coupon list. Each record carries its id in
// "coupon_id" or "id"; records with neither are skipped.
func ParseCoupons(data []byte) ([]Coupon, error) {
	root, err := parseArray(data)
	if err != nil {
		return nil, err
	}

	coupons := []Coupon{}
	for _, rec := range root.Array() {
		if id := couponID(rec); id != 0 {
			coupons = append(coupons, Coupon{ID: id})
		}
	}

	return coupons, nil
}

func parseArray(data []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, errors.Wrap(ErrLoadFailed, "response is not valid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return gjson.Result{}, errors.Wrap(ErrLoadFailed, "response is not a JSON array")
	}
	return root, nil
}

func rectOf(rec gjson.Result) Rect {
	return Rect{
		Left:   number(rec, "left"),
		Top:    number(rec, "top"),
		Width:  number(rec, "width"),
		Height: number(rec, "height"),
	}
}

func couponID(rec gjson.Result) int64 {
	if id, ok := optionalNumber(rec, "coupon_id"); ok {
		return int64(id)
	}
	if id, ok := optionalNumber(rec, "id"); ok {
		return int64(id)
	}
	return 0
}

// number returns the numeric field at path, or 0 when missing or not numeric
func number(rec gjson.Result, path string) float64 {
	v, _ := optionalNumber(rec, path)
	return v
}

func optionalNumber(rec gjson.Result, path string) (float64, bool) {
	v := rec.Get(path)
	switch v.Type {
	case gjson.Number:
		return v.Float(), true
	case gjson.String:
		f, err := strconv.ParseFloat(v.Str, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
