package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbtypes "github.com/ssmdetailing/ssm-backend/pkg/db/types"
)

// SiteSettings is the single row of editable site copy.
type SiteSettings struct {
	ID                uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	HeroEyebrow       string             `gorm:"column:hero_eyebrow;not null"`
	HeroTitle         string             `gorm:"column:hero_title;not null"`
	HeroSubtitle      string             `gorm:"column:hero_subtitle;not null"`
	HeroCTAPrimary    string             `gorm:"column:hero_cta_primary;not null"`
	HeroCTASecondary  string             `gorm:"column:hero_cta_secondary;not null"`
	AboutEyebrow      string             `gorm:"column:about_eyebrow;not null"`
	AboutTitle        string             `gorm:"column:about_title;not null"`
	AboutIntro        string             `gorm:"column:about_intro;not null"`
	AboutWhatWeDo     dbtypes.StringList `gorm:"column:about_what_we_do;type:jsonb;not null"`
	AboutWhatWeDontDo dbtypes.StringList `gorm:"column:about_what_we_dont_do;type:jsonb;not null"`
	AboutMotto        string             `gorm:"column:about_motto;not null"`
	ContactPhone      string             `gorm:"column:contact_phone;not null"`
	ContactEmail      string             `gorm:"column:contact_email;not null"`
	ContactAddress    string             `gorm:"column:contact_address;not null"`
	WhatsappNumber    string             `gorm:"column:whatsapp_number;not null"`
	FacebookURL       string             `gorm:"column:facebook_url;not null"`
	InstagramURL      string             `gorm:"column:instagram_url;not null"`
	TiktokURL         string             `gorm:"column:tiktok_url;not null"`
	FooterTagline     string             `gorm:"column:footer_tagline;not null"`
	FooterDescription string             `gorm:"column:footer_description;not null"`
	PlaceID           *string            `gorm:"column:place_id"`
	GeoLat            *float64           `gorm:"column:geo_lat"`
	GeoLng            *float64           `gorm:"column:geo_lng"`
	CreatedAt         time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (SiteSettings) TableName() string { return "site_settings" }

func (s *SiteSettings) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}
