package content

import (
	"time"

	"github.com/google/uuid"

	"github.com/ssmdetailing/ssm-backend/pkg/db/models"
)

// SettingsDTO is the editable site copy.
type SettingsDTO struct {
	ID                uuid.UUID `json:"id"`
	HeroEyebrow       string    `json:"hero_eyebrow"`
	HeroTitle         string    `json:"hero_title"`
	HeroSubtitle      string    `json:"hero_subtitle"`
	HeroCTAPrimary    string    `json:"hero_cta_primary"`
	HeroCTASecondary  string    `json:"hero_cta_secondary"`
	AboutEyebrow      string    `json:"about_eyebrow"`
	AboutTitle        string    `json:"about_title"`
	AboutIntro        string    `json:"about_intro"`
	AboutWhatWeDo     []string  `json:"about_what_we_do"`
	AboutWhatWeDontDo []string  `json:"about_what_we_dont_do"`
	AboutMotto        string    `json:"about_motto"`
	ContactPhone      string    `json:"contact_phone"`
	ContactEmail      string    `json:"contact_email"`
	ContactAddress    string    `json:"contact_address"`
	WhatsappNumber    string    `json:"whatsapp_number"`
	FacebookURL       string    `json:"facebook_url"`
	InstagramURL      string    `json:"instagram_url"`
	TiktokURL         string    `json:"tiktok_url"`
	FooterTagline     string    `json:"footer_tagline"`
	FooterDescription string    `json:"footer_description"`
	PlaceID           *string   `json:"place_id,omitempty"`
	GeoLat            *float64  `json:"geo_lat,omitempty"`
	GeoLng            *float64  `json:"geo_lng,omitempty"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type ServiceDTO struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Icon         string    `json:"icon"`
	Features     []string  `json:"features"`
	Price        *string   `json:"price,omitempty"`
	Duration     *string   `json:"duration,omitempty"`
	DisplayOrder int       `json:"display_order"`
	IsActive     bool      `json:"is_active"`
}

type FAQDTO struct {
	ID           uuid.UUID `json:"id"`
	Question     string    `json:"question"`
	Answer       string    `json:"answer"`
	DisplayOrder int       `json:"display_order"`
	IsActive     bool      `json:"is_active"`
}

type TestimonialDTO struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	Content      string    `json:"content"`
	Rating       int       `json:"rating"`
	ImageURL     *string   `json:"image_url,omitempty"`
	DisplayOrder int       `json:"display_order"`
	IsActive     bool      `json:"is_active"`
}

// ContactLinks are derived from the settings phone numbers.
type ContactLinks struct {
	DisplayPhone string `json:"display_phone"`
	TelLink      string `json:"tel_link"`
	WhatsAppLink string `json:"whatsapp_link"`
	Email        string `json:"email"`
	MailtoLink   string `json:"mailto_link,omitempty"`
}

// Bundle is everything the landing page renders. Fallback lists the parts
// served from built-in defaults.
type Bundle struct {
	Settings     SettingsDTO      `json:"settings"`
	Services     []ServiceDTO     `json:"services"`
	Testimonials []TestimonialDTO `json:"testimonials"`
	FAQs         []FAQDTO         `json:"faqs"`
	Contact      ContactLinks     `json:"contact"`
	Fallback     []string         `json:"fallback,omitempty"`
}

// UpdateSettingsRequest replaces only the fields that are set.
type UpdateSettingsRequest struct {
	HeroEyebrow       *string   `json:"hero_eyebrow" validate:"omitempty,max=200"`
	HeroTitle         *string   `json:"hero_title" validate:"omitempty,max=200"`
	HeroSubtitle      *string   `json:"hero_subtitle" validate:"omitempty,max=300"`
	HeroCTAPrimary    *string   `json:"hero_cta_primary" validate:"omitempty,max=80"`
	HeroCTASecondary  *string   `json:"hero_cta_secondary" validate:"omitempty,max=80"`
	AboutEyebrow      *string   `json:"about_eyebrow" validate:"omitempty,max=200"`
	AboutTitle        *string   `json:"about_title" validate:"omitempty,max=200"`
	AboutIntro        *string   `json:"about_intro" validate:"omitempty,max=2000"`
	AboutWhatWeDo     *[]string `json:"about_what_we_do" validate:"omitempty,max=20,dive,max=200"`
	AboutWhatWeDontDo *[]string `json:"about_what_we_dont_do" validate:"omitempty,max=20,dive,max=200"`
	AboutMotto        *string   `json:"about_motto" validate:"omitempty,max=300"`
	ContactPhone      *string   `json:"contact_phone" validate:"omitempty,max=30"`
	ContactEmail      *string   `json:"contact_email" validate:"omitempty,email"`
	ContactAddress    *string   `json:"contact_address" validate:"omitempty,max=300"`
	WhatsappNumber    *string   `json:"whatsapp_number" validate:"omitempty,max=30"`
	FacebookURL       *string   `json:"facebook_url" validate:"omitempty,url"`
	InstagramURL      *string   `json:"instagram_url" validate:"omitempty,url"`
	TiktokURL         *string   `json:"tiktok_url" validate:"omitempty,url"`
	FooterTagline     *string   `json:"footer_tagline" validate:"omitempty,max=200"`
	FooterDescription *string   `json:"footer_description" validate:"omitempty,max=1000"`
}

type ServiceRequest struct {
	Title        string   `json:"title" validate:"required,max=120"`
	Description  string   `json:"description" validate:"required,max=2000"`
	Icon         string   `json:"icon" validate:"required,max=60"`
	Features     []string `json:"features" validate:"omitempty,max=20,dive,max=200"`
	Price        *string  `json:"price" validate:"omitempty,max=60"`
	Duration     *string  `json:"duration" validate:"omitempty,max=60"`
	DisplayOrder *int     `json:"display_order" validate:"omitempty,min=0"`
	IsActive     *bool    `json:"is_active"`
}

type FAQRequest struct {
	Question     string `json:"question" validate:"required,max=300"`
	Answer       string `json:"answer" validate:"required,max=4000"`
	DisplayOrder *int   `json:"display_order" validate:"omitempty,min=0"`
	IsActive     *bool  `json:"is_active"`
}

type TestimonialRequest struct {
	Name         string  `json:"name" validate:"required,max=120"`
	Role         string  `json:"role" validate:"max=120"`
	Content      string  `json:"content" validate:"required,max=2000"`
	Rating       int     `json:"rating" validate:"required,min=1,max=5"`
	ImageURL     *string `json:"image_url" validate:"omitempty,max=1000"`
	DisplayOrder *int    `json:"display_order" validate:"omitempty,min=0"`
	IsActive     *bool   `json:"is_active"`
}

type AutocompleteRequest struct {
	Input string `json:"input" validate:"required,min=2,max=200"`
}

type ResolveLocationRequest struct {
	PlaceID string `json:"place_id" validate:"required,max=300"`
}

func settingsFromModel(m *models.SiteSettings) SettingsDTO {
	return SettingsDTO{
		ID:                m.ID,
		HeroEyebrow:       m.HeroEyebrow,
		HeroTitle:         m.HeroTitle,
		HeroSubtitle:      m.HeroSubtitle,
		HeroCTAPrimary:    m.HeroCTAPrimary,
		HeroCTASecondary:  m.HeroCTASecondary,
		AboutEyebrow:      m.AboutEyebrow,
		AboutTitle:        m.AboutTitle,
		AboutIntro:        m.AboutIntro,
		AboutWhatWeDo:     append([]string{}, m.AboutWhatWeDo...),
		AboutWhatWeDontDo: append([]string{}, m.AboutWhatWeDontDo...),
		AboutMotto:        m.AboutMotto,
		ContactPhone:      m.ContactPhone,
		ContactEmail:      m.ContactEmail,
		ContactAddress:    m.ContactAddress,
		WhatsappNumber:    m.WhatsappNumber,
		FacebookURL:       m.FacebookURL,
		InstagramURL:      m.InstagramURL,
		TiktokURL:         m.TiktokURL,
		FooterTagline:     m.FooterTagline,
		FooterDescription: m.FooterDescription,
		PlaceID:           m.PlaceID,
		GeoLat:            m.GeoLat,
		GeoLng:            m.GeoLng,
		UpdatedAt:         m.UpdatedAt,
	}
}

func serviceFromModel(m models.Service) ServiceDTO {
	return ServiceDTO{
		ID:           m.ID,
		Title:        m.Title,
		Description:  m.Description,
		Icon:         m.Icon,
		Features:     append([]string{}, m.Features...),
		Price:        m.Price,
		Duration:     m.Duration,
		DisplayOrder: m.DisplayOrder,
		IsActive:     m.IsActive,
	}
}

func faqFromModel(m models.FAQItem) FAQDTO {
	return FAQDTO{
		ID:           m.ID,
		Question:     m.Question,
		Answer:       m.Answer,
		DisplayOrder: m.DisplayOrder,
		IsActive:     m.IsActive,
	}
}

func testimonialFromModel(m models.Testimonial) TestimonialDTO {
	return TestimonialDTO{
		ID:           m.ID,
		Name:         m.Name,
		Role:         m.Role,
		Content:      m.Content,
		Rating:       m.Rating,
		ImageURL:     m.ImageURL,
		DisplayOrder: m.DisplayOrder,
		IsActive:     m.IsActive,
	}
}

func mapSlice[M, D any](in []M, fn func(M) D) []D {
	out := make([]D, 0, len(in))
	for _, m := range in {
		out = append(out, fn(m))
	}
	return out
}
