package content

import "github.com/google/uuid"

func defaultID(key string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://ssmdetailing.ro/defaults/"+key))
}

// DefaultSettings is served when the settings row is missing or unreadable.
func DefaultSettings() SettingsDTO {
	return SettingsDTO{
		ID:               defaultID("settings"),
		HeroEyebrow:      "Construim interioare care impresionează",
		HeroTitle:        "Atelier Premium de Detailing Interior Auto",
		HeroSubtitle:     "Plafoane Starlight, Detailing Interior & Recondiționare Faruri",
		HeroCTAPrimary:   "Programează-te Acum",
		HeroCTASecondary: "Scrie-ne pe WhatsApp",
		AboutEyebrow:     "Despre Noi",
		AboutTitle:       "Atelier Specializat",
		AboutIntro:       "SSM Detailing este specializat în lucrări de interior și detalii selective de exterior.",
		AboutWhatWeDo: []string{
			"Plafoane Starlight personalizate",
			"Detailing interior premium",
			"Restaurare faruri",
			"Retapițare plafon & stâlpi",
			"Curățare jante",
		},
		AboutWhatWeDontDo: []string{
			"Spălare exterioară",
			"Corecție vopsea",
			"Ceară / Lustruire",
			"Servicii de volum",
		},
		AboutMotto:        "Ne concentrăm pe calitate, nu pe cantitate.",
		ContactPhone:      "+40726521578",
		ContactEmail:      "contact@ssmdetailing.ro",
		ContactAddress:    "Mărculești, Ialomița, România",
		WhatsappNumber:    "+40726521578",
		FacebookURL:       "https://www.facebook.com/chituvalentin25/",
		TiktokURL:         "https://www.tiktok.com/@stefanmarian66",
		FooterTagline:     "Excelență în detailing interior auto",
		FooterDescription: "Atelier specializat exclusiv pe interior - transformăm fiecare mașină într-o experiență unică.",
	}
}

func DefaultServices() []ServiceDTO {
	return []ServiceDTO{
		{ID: defaultID("service/d1"), Title: "Detailing Exterior", Description: "Curățare și tratamente specializate pentru exteriorul mașinii. Tratament hidrofob pentru geamuri, parbriz și oglinzi. Degresare și curățare jante.", Icon: "Sparkles", Features: []string{}, DisplayOrder: 1, IsActive: true},
		{ID: defaultID("service/d2"), Title: "Detailing Interior Premium", Description: "Curățare profesională în profunzime pentru întreg interiorul mașinii. Tapițerie, piele, fețe uși, mochete, stâlpi și centuri de siguranță.", Icon: "Home", Features: []string{}, DisplayOrder: 2, IsActive: true},
		{ID: defaultID("service/d3"), Title: "Recondiționare & Polimerizare Faruri", Description: "Redăm claritatea farurilor printr-un proces profesional de polimerizare pentru o vizibilitate optimă și siguranță sporită.", Icon: "Lightbulb", Features: []string{}, DisplayOrder: 4, IsActive: true},
		{ID: defaultID("service/d4"), Title: "Detailing Motor", Description: "Curățare meticuloasă a compartimentului motor urmată de aplicarea unui tratament de protecție specializat.", Icon: "Wrench", Features: []string{}, DisplayOrder: 6, IsActive: true},
	}
}

func DefaultTestimonials() []TestimonialDTO {
	return []TestimonialDTO{
		{ID: defaultID("testimonial/t1"), Name: "Andrei Popescu", Role: "Proprietar BMW X5", Content: "Servicii excepționale! Mașina arată ca nouă după tratamentul ceramic. Recomand cu încredere!", Rating: 5, DisplayOrder: 1, IsActive: true},
		{ID: defaultID("testimonial/t2"), Name: "Maria Ionescu", Role: "Proprietar Audi A4", Content: "Profesionalism la superlativ. Echipa este dedicată și atentă la detalii. Mulțumit 100%!", Rating: 5, DisplayOrder: 2, IsActive: true},
		{ID: defaultID("testimonial/t3"), Name: "Alexandru Popa", Role: "Proprietar Mercedes C-Class", Content: "Cel mai bun detailing! Rezultate impecabile și prețuri corecte.", Rating: 5, DisplayOrder: 3, IsActive: true},
	}
}

func DefaultFAQs() []FAQDTO {
	return []FAQDTO{
		{ID: defaultID("faq/f1"), Question: "Cât durează un serviciu complet de detailing?", Answer: "Durata variază în funcție de starea mașinii și serviciile alese. Un detailing interior complet durează de obicei 4-8 ore. Vă recomandăm să ne contactați pentru o estimare personalizată.", DisplayOrder: 1, IsActive: true},
		{ID: defaultID("faq/f2"), Question: "Este nevoie de programare?", Answer: "Da, lucrăm exclusiv pe bază de programare pentru a asigura atenția maximă fiecărui client. Contactați-ne pe WhatsApp sau telefon pentru a stabili o dată.", DisplayOrder: 2, IsActive: true},
		{ID: defaultID("faq/f3"), Question: "Ce tipuri de mașini acceptați pentru detailing?", Answer: "Acceptăm orice tip de autovehicul: berline, SUV-uri, mașini sport, crossovere. Nu există restricții privind marca sau modelul.", DisplayOrder: 3, IsActive: true},
		{ID: defaultID("faq/f4"), Question: "Care este diferența față de o spălătorie auto obișnuită?", Answer: "Detailing-ul este un proces mult mai aprofundat care implică curățarea și recondiționarea fiecărui detaliu al mașinii, folosind produse și echipamente profesionale specializate.", DisplayOrder: 4, IsActive: true},
	}
}
