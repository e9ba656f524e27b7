package seo

import (
	"strconv"
)

const schemaContext = "https://schema.org"

// LocalBusiness is the schema.org organization document for the site.
type LocalBusiness struct {
	Context         string           `json:"@context,omitempty"`
	Type            string           `json:"@type"`
	ID              string           `json:"@id"`
	Name            string           `json:"name"`
	AlternateName   string           `json:"alternateName,omitempty"`
	Description     string           `json:"description,omitempty"`
	URL             string           `json:"url,omitempty"`
	Telephone       string           `json:"telephone,omitempty"`
	Email           string           `json:"email,omitempty"`
	PriceRange      string           `json:"priceRange,omitempty"`
	Image           string           `json:"image,omitempty"`
	Address         *PostalAddress   `json:"address,omitempty"`
	Geo             *GeoCoordinates  `json:"geo,omitempty"`
	OpeningHours    []OpeningHours   `json:"openingHoursSpecification,omitempty"`
	SameAs          []string         `json:"sameAs,omitempty"`
	AggregateRating *AggregateRating `json:"aggregateRating,omitempty"`
	OfferCatalog    *OfferCatalog    `json:"hasOfferCatalog,omitempty"`
	Reviews         []Review         `json:"review,omitempty"`
}

type PostalAddress struct {
	Type            string `json:"@type"`
	StreetAddress   string `json:"streetAddress,omitempty"`
	AddressLocality string `json:"addressLocality"`
	AddressRegion   string `json:"addressRegion"`
	AddressCountry  string `json:"addressCountry"`
}

type GeoCoordinates struct {
	Type      string  `json:"@type"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type OpeningHours struct {
	Type      string   `json:"@type"`
	DayOfWeek []string `json:"dayOfWeek"`
	Opens     string   `json:"opens"`
	Closes    string   `json:"closes"`
}

type AggregateRating struct {
	Type        string `json:"@type"`
	RatingValue string `json:"ratingValue"`
	ReviewCount string `json:"reviewCount"`
	BestRating  string `json:"bestRating"`
	WorstRating string `json:"worstRating"`
}

type OfferCatalog struct {
	Type  string  `json:"@type"`
	Name  string  `json:"name"`
	Items []Offer `json:"itemListElement"`
}

type Offer struct {
	Type        string      `json:"@type"`
	ItemOffered OfferedItem `json:"itemOffered"`
}

type OfferedItem struct {
	Type        string `json:"@type"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type Review struct {
	Type          string `json:"@type"`
	Author        Person `json:"author"`
	ReviewRating  Rating `json:"reviewRating"`
	ReviewBody    string `json:"reviewBody"`
	DatePublished string `json:"datePublished"`
}

type Person struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

type Rating struct {
	Type        string `json:"@type"`
	RatingValue int    `json:"ratingValue"`
	BestRating  int    `json:"bestRating"`
}

// NewLocalBusiness fills the type markers for a business with the given id.
func NewLocalBusiness(id, name string) LocalBusiness {
	return LocalBusiness{Context: schemaContext, Type: "LocalBusiness", ID: id, Name: name}
}

func NewAddress(street, locality, region, country string) *PostalAddress {
	return &PostalAddress{Type: "PostalAddress", StreetAddress: street, AddressLocality: locality, AddressRegion: region, AddressCountry: country}
}

func NewGeo(lat, lng float64) *GeoCoordinates {
	return &GeoCoordinates{Type: "GeoCoordinates", Latitude: lat, Longitude: lng}
}

func NewOpeningHours(opens, closes string, days ...string) OpeningHours {
	return OpeningHours{Type: "OpeningHoursSpecification", DayOfWeek: days, Opens: opens, Closes: closes}
}

// NewAggregateRating returns nil when there is nothing to aggregate.
func NewAggregateRating(average string, count int) *AggregateRating {
	if count <= 0 {
		return nil
	}
	return &AggregateRating{
		Type:        "AggregateRating",
		RatingValue: average,
		ReviewCount: strconv.Itoa(count),
		BestRating:  "5",
		WorstRating: "1",
	}
}

func NewOffer(name, description string) Offer {
	return Offer{Type: "Offer", ItemOffered: OfferedItem{Type: "Service", Name: name, Description: description}}
}

func NewReview(author, body string, rating int, published string) Review {
	return Review{
		Type:          "Review",
		Author:        Person{Type: "Person", Name: author},
		ReviewRating:  Rating{Type: "Rating", RatingValue: rating, BestRating: 5},
		ReviewBody:    body,
		DatePublished: published,
	}
}

