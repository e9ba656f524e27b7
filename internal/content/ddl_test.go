package content

const settingsDDL = `CREATE TABLE site_settings (
	id TEXT PRIMARY KEY,
	hero_eyebrow TEXT NOT NULL DEFAULT '',
	hero_title TEXT NOT NULL DEFAULT '',
	hero_subtitle TEXT NOT NULL DEFAULT '',
	hero_cta_primary TEXT NOT NULL DEFAULT '',
	hero_cta_secondary TEXT NOT NULL DEFAULT '',
	about_eyebrow TEXT NOT NULL DEFAULT '',
	about_title TEXT NOT NULL DEFAULT '',
	about_intro TEXT NOT NULL DEFAULT '',
	about_what_we_do TEXT NOT NULL DEFAULT '[]',
	about_what_we_dont_do TEXT NOT NULL DEFAULT '[]',
	about_motto TEXT NOT NULL DEFAULT '',
	contact_phone TEXT NOT NULL DEFAULT '',
	contact_email TEXT NOT NULL DEFAULT '',
	contact_address TEXT NOT NULL DEFAULT '',
	whatsapp_number TEXT NOT NULL DEFAULT '',
	facebook_url TEXT NOT NULL DEFAULT '',
	instagram_url TEXT NOT NULL DEFAULT '',
	tiktok_url TEXT NOT NULL DEFAULT '',
	footer_tagline TEXT NOT NULL DEFAULT '',
	footer_description TEXT NOT NULL DEFAULT '',
	place_id TEXT,
	geo_lat REAL,
	geo_lng REAL,
	created_at DATETIME,
	updated_at DATETIME
)`

const servicesDDL = `CREATE TABLE services (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	icon TEXT NOT NULL DEFAULT '',
	features TEXT NOT NULL DEFAULT '[]',
	price TEXT,
	duration TEXT,
	display_order INTEGER NOT NULL DEFAULT 0,
	is_active BOOLEAN NOT NULL DEFAULT 1,
	created_at DATETIME,
	updated_at DATETIME
)`

const faqDDL = `CREATE TABLE faq_items (
	id TEXT PRIMARY KEY,
	question TEXT NOT NULL,
	answer TEXT NOT NULL,
	display_order INTEGER NOT NULL DEFAULT 0,
	is_active BOOLEAN NOT NULL DEFAULT 1,
	created_at DATETIME,
	updated_at DATETIME
)`

const testimonialsDDL = `CREATE TABLE testimonials (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT '',
	content TEXT NOT NULL,
	rating INTEGER NOT NULL DEFAULT 5 CHECK (rating BETWEEN 1 AND 5),
	image_url TEXT,
	display_order INTEGER NOT NULL DEFAULT 0,
	is_active BOOLEAN NOT NULL DEFAULT 1,
	created_at DATETIME,
	updated_at DATETIME
)`

var contentDDL = []string{settingsDDL, servicesDDL, faqDDL, testimonialsDDL}
