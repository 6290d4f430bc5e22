// internal/app/features/pages/content.go
package pages

// QA is one FAQ entry.
type QA struct {
	Question string
	Answer   string
}

// Section is a titled list of guidelines.
type Section struct {
	Title string
	Intro string
	Items []string
}

// Partner is an organisation shown on the partner directory pages.
type Partner struct {
	Name        string
	Country     string
	Image       string
	Description string
	Address     string
	Phone       string
	Website     string
	Hours       string
	Offers      []string
}

// Resource is a regional food-aid post, linked from the landing page.
type Resource struct {
	ID         string
	Country    string
	Title      string
	Image      string
	Summary    string
	Paragraphs []Paragraph
	Website    string
	Phone      string
	Locations  []string
}

// Paragraph is a lead sentence followed by an optional bullet list.
type Paragraph struct {
	Text    string
	Bullets []string
}

const unsplash = "https://images.unsplash.com/"

func img(id string) string {
	return unsplash + id + "?ixlib=rb-1.2.1&auto=format&fit=crop&w=800&q=80"
}

var faqs = []QA{
	{"How does Take & Eat work?", "Take & Eat is a platform that connects food donors with people in need. Donors can list available food, and those in need can browse and arrange pickup. We facilitate safe food sharing within communities."},
	{"Is it safe to share food through Take & Eat?", "Yes, we have strict food safety guidelines that all users must follow. We recommend checking our Food Safety Guidelines for detailed information on safe food handling and sharing practices."},
	{"How do I know if I'm eligible to receive food?", "Take & Eat is open to anyone in need. There are no specific eligibility requirements, but we operate on a trust-based system and ask users to only take what they truly need."},
	{"Can I share any type of food?", "While most foods can be shared, they must meet our safety guidelines. Perishable items must be properly stored and handled. Check our Food Safety Guidelines for specific requirements."},
	{"How do I arrange a food pickup?", "Once you find food you'd like to receive, you can contact the donor through our platform to arrange a pickup time and location. We recommend meeting in safe, public places."},
	{"What if I can't make a scheduled pickup?", "Please notify the donor as soon as possible if you can't make a scheduled pickup. This allows them to make the food available to others who might need it."},
	{"Is there a cost to use Take & Eat?", "No, Take & Eat is completely free to use. We do not charge any fees for listing or receiving food. Commercial use is not permitted."},
	{"How can I ensure my safety when meeting for food pickup?", "Always meet in public places, bring a friend if possible, and trust your instincts. If something doesn't feel right, don't proceed with the exchange."},
	{"What should I do if I have a complaint?", "If you experience any issues, please contact our support team immediately. We take all complaints seriously and will investigate thoroughly."},
	{"Can I donate money instead of food?", "Currently, Take & Eat focuses on food sharing only. If you'd like to make monetary donations, we recommend connecting with local food banks and charities."},
}

var foodSafety = []Section{
	{Title: "Temperature Control", Items: []string{
		"Keep hot foods at 60°C (140°F) or above",
		"Keep cold foods at 4°C (40°F) or below",
		"Never leave perishable food at room temperature for more than 2 hours",
		"Use insulated containers for transportation",
	}},
	{Title: "Storage Guidelines", Items: []string{
		"Store raw meat on the bottom shelf",
		"Keep different types of food separate",
		"Use airtight containers for storage",
		"Label all items with dates",
	}},
	{Title: "Time Management", Items: []string{
		`Follow "first in, first out" principle`,
		"Check expiration dates regularly",
		"Plan distribution within safe timeframes",
		"Monitor food quality throughout storage",
	}},
	{Title: "Food Disposal", Items: []string{
		"Dispose of expired or spoiled food immediately",
		"Use designated waste bins",
		"Follow local disposal regulations",
		"Document disposed items",
	}},
	{Title: "Warning Signs", Intro: "Do not accept or distribute food if you notice:", Items: []string{
		"Unusual odors",
		"Mold or discoloration",
		"Damaged packaging",
		"Temperature abuse signs",
		"Past expiration dates",
	}},
}

var guidelines = []Section{
	{Title: "Core Values", Items: []string{
		"Respect for all community members",
		"Commitment to reducing food waste",
		"Support for those in need",
		"Transparency in all interactions",
	}},
	{Title: "Communication", Items: []string{
		"Be clear and honest in your listings",
		"Respond to messages promptly",
		"Use respectful language",
		"Report any concerns to moderators",
	}},
	{Title: "Safety & Trust", Items: []string{
		"Verify your identity",
		"Meet in safe, public locations",
		"Follow food safety guidelines",
		"Report suspicious behavior",
	}},
	{Title: "Fair Practices", Items: []string{
		"First come, first served basis",
		"No reselling of donated food",
		"Equal opportunity for all members",
		"Transparent distribution process",
	}},
	{Title: "Giving Guidelines", Items: []string{
		"Only share food that you would eat yourself",
		"Provide accurate descriptions",
		"Include allergen information",
		"Be reliable with pickup times",
		"Package food safely",
	}},
}

var foodBanks = []Partner{
	{
		Name:        "City Central Food Bank",
		Country:     "United States",
		Image:       img("photo-1593113598332-cd288d649433"),
		Description: "Serving the community for over 20 years with emergency food assistance and nutrition education programs.",
		Address:     "123 Main Street, Downtown",
		Phone:       "(555) 123-4567",
		Website:     "https://cityfoodbank.org",
		Hours:       "Mon-Fri: 9AM-5PM, Sat: 10AM-2PM",
		Offers:      []string{"Emergency food boxes", "Fresh produce distribution", "Senior food program", "Children's weekend meal program"},
	},
	{
		Name:        "Neighborhood Food Pantry",
		Country:     "United Kingdom",
		Image:       img("photo-1488459716781-31db52582fe9"),
		Description: "A community-driven food pantry focused on providing fresh, nutritious food to local families in need.",
		Address:     "456 Park Avenue, Westside",
		Phone:       "(555) 234-5678",
		Website:     "https://neighborhoodpantry.org",
		Hours:       "Tue-Sat: 10AM-6PM",
		Offers:      []string{"Weekly food distribution", "Home delivery for seniors", "Nutrition workshops", "Community garden program"},
	},
	{
		Name:        "Regional Food Distribution Center",
		Country:     "France",
		Image:       img("photo-1593113630400-ea4288922497"),
		Description: "Large-scale food distribution center supporting multiple counties with comprehensive food assistance programs.",
		Address:     "789 Industrial Way, Eastside",
		Phone:       "(555) 345-6789",
		Website:     "https://regionalfoodcenter.org",
		Hours:       "Mon-Sat: 8AM-7PM",
		Offers:      []string{"Bulk food distribution", "Agency partner support", "Mobile food pantry", "Disaster relief assistance"},
	},
}

var restaurants = []Partner{
	{
		Name:        "Fresh Harvest Kitchen",
		Country:     "United States",
		Image:       img("photo-1542838132-92c53300491e"),
		Description: "A farm-to-table restaurant committed to reducing food waste through innovative cooking techniques and community partnerships.",
		Address:     "789 Market Street, Downtown",
		Phone:       "(555) 987-6543",
		Website:     "https://freshharvestkitchen.com",
		Hours:       "Tue-Sun: 11AM-10PM",
		Offers:      []string{"Daily food donation program", "Composting program", "Local farmer partnerships", "Zero-waste cooking practices"},
	},
	{
		Name:        "Green Table Bistro",
		Country:     "United Kingdom",
		Image:       img("photo-1517248135467-4c7edcad34c4"),
		Description: "Sustainable dining establishment focused on organic ingredients and minimal environmental impact.",
		Address:     "456 Garden Avenue, Westside",
		Phone:       "(555) 876-5432",
		Website:     "https://greentablebistro.com",
		Hours:       "Mon-Sat: 10AM-9PM",
		Offers:      []string{"Weekly surplus food sharing", "Sustainable packaging", "Community education programs", "Food waste tracking system"},
	},
	{
		Name:        "Community Kitchen Collective",
		Country:     "France",
		Image:       img("photo-1559339352-11d035aa65de"),
		Description: "A cooperative restaurant supporting local food initiatives and providing meals to those in need.",
		Address:     "123 Unity Way, Eastside",
		Phone:       "(555) 765-4321",
		Website:     "https://kitchencollective.org",
		Hours:       "Wed-Sun: 12PM-8PM",
		Offers:      []string{"Pay-what-you-can meals", "Food recovery program", "Cooking workshops", "Community meal sharing"},
	},
}

var communityCenters = []Partner{
	{
		Name:        "Unity Community Center",
		Country:     "United States",
		Image:       img("photo-1593113598332-cd288d649433"),
		Description: "A vibrant community hub providing food assistance, educational programs, and social services to local residents.",
		Address:     "321 Unity Street, Downtown",
		Phone:       "(555) 234-5678",
		Website:     "https://unitycommunitycenter.org",
		Hours:       "Mon-Fri: 8AM-8PM, Sat: 9AM-5PM",
		Offers:      []string{"Food pantry services", "Community kitchen", "Nutrition education", "Senior meal program"},
	},
	{
		Name:        "Neighborhood Resource Hub",
		Country:     "United Kingdom",
		Image:       img("photo-1577495508048-b635879837f1"),
		Description: "Comprehensive resource center offering food assistance alongside employment, housing, and social services.",
		Address:     "567 Hope Avenue, Westside",
		Phone:       "(555) 345-6789",
		Website:     "https://resourcehub.org",
		Hours:       "Mon-Sat: 9AM-7PM",
		Offers:      []string{"Emergency food assistance", "Job training program", "Youth mentoring", "Family support services"},
	},
	{
		Name:        "Eastside Family Center",
		Country:     "France",
		Image:       img("photo-1573497019940-1c28c88b4f3e"),
		Description: "Family-focused center providing comprehensive support services including food assistance and childcare.",
		Address:     "890 Family Way, Eastside",
		Phone:       "(555) 456-7890",
		Website:     "https://eastsidefamily.org",
		Hours:       "Mon-Fri: 7AM-6PM",
		Offers:      []string{"Family food program", "After-school meals", "Parent support groups", "Holiday food drives"},
	},
}

var resources = []Resource{
	{
		ID:      "france",
		Country: "France",
		Title:   "Free Food Resources in France",
		Image:   img("photo-1499744937866-d7e566a20a61"),
		Summary: "Discover organizations providing free meals and food assistance across France",
		Paragraphs: []Paragraph{
			{Text: "France has a robust network of food aid organizations helping those in need. Here are some key resources:"},
			{Text: "Les Restos du Cœur is one of France's largest food aid organizations, serving millions of meals annually. They operate in major cities including Paris, Lyon, and Marseille, providing:",
				Bullets: []string{"Hot meals", "Food packages", "Mobile food distribution", "Special assistance for families with children"}},
			{Text: "The Banque Alimentaire network collects and distributes food through local associations. They work with:",
				Bullets: []string{"Local grocery stores", "Farmers", "Food industry partners"}},
			{Text: "Food aid locations can be found in every major French city, with concentrated efforts in:",
				Bullets: []string{"Paris: Multiple locations in each arrondissement", "Lyon: Central distribution center and mobile units", "Marseille: Coastal area coverage", "Toulouse: Network of neighborhood centers"}},
		},
		Website:   "https://www.restosducoeur.org",
		Phone:     "+33 1 53 32 23 23",
		Locations: []string{"Paris", "Lyon", "Marseille", "Toulouse"},
	},
	{
		ID:      "lebanon",
		Country: "Lebanon",
		Title:   "Food Assistance Programs in Lebanon",
		Image:   img("photo-1579027989536-b7b1f875659b"),
		Summary: "Essential food aid resources and distribution centers in Lebanon",
		Paragraphs: []Paragraph{
			{Text: "Lebanon's food assistance network provides critical support through various organizations:"},
			{Text: "The Lebanese Food Bank leads efforts in:",
				Bullets: []string{"Emergency food distribution", "Regular food package delivery", "Support for local soup kitchens", "Coordination with international aid organizations"}},
			{Text: "Key programs include:",
				Bullets: []string{"Monthly food box distribution", "Hot meal services", "Special Ramadan food assistance", "Emergency response programs"}},
			{Text: "Major distribution centers are located in:",
				Bullets: []string{"Beirut: Multiple neighborhood centers", "Tripoli: Central distribution hub", "Sidon: Coastal region support", "Bekaa Valley: Rural assistance network"}},
		},
		Website:   "https://lebanesefoodbank.org",
		Phone:     "+961 1 613 520",
		Locations: []string{"Beirut", "Tripoli", "Sidon"},
	},
	{
		ID:      "syria",
		Country: "Syria",
		Title:   "Emergency Food Aid in Syria",
		Image:   img("photo-1498837167922-ddd27525d352"),
		Summary: "Critical food assistance and emergency aid locations throughout Syria",
		Paragraphs: []Paragraph{
			{Text: "Emergency food assistance in Syria is coordinated through several humanitarian organizations:"},
			{Text: "The Syrian Arab Red Crescent provides:",
				Bullets: []string{"Emergency food distribution", "Nutrition programs", "Clean water access", "Medical assistance alongside food aid"}},
			{Text: "Key services include:",
				Bullets: []string{"Daily bread distribution", "Monthly food baskets", "Special assistance for children", "Emergency response units"}},
			{Text: "Main distribution centers operate in:",
				Bullets: []string{"Damascus: Multiple emergency centers", "Aleppo: Humanitarian aid hubs", "Homs: Central distribution points", "Rural areas: Mobile distribution units"}},
		},
		Website:   "https://sarc.sy",
		Phone:     "+963 11 332 7691",
		Locations: []string{"Damascus", "Aleppo", "Homs"},
	},
}

// Resources returns the resource posts, all of them when country is "".
func Resources(country string) []Resource {
	if country == "" {
		return resources
	}
	var out []Resource
	for _, res := range resources {
		if res.Country == country {
			out = append(out, res)
		}
	}
	return out
}

// ResourceCountries lists the countries that have a resource post, in post
// order. Not every one of them is a listing region.
func ResourceCountries() []string {
	out := make([]string, 0, len(resources))
	for _, res := range resources {
		out = append(out, res.Country)
	}
	return out
}

// ResourceByID returns the post with the given id.
func ResourceByID(id string) (Resource, bool) {
	for _, res := range resources {
		if res.ID == id {
			return res, true
		}
	}
	return Resource{}, false
}

func partnersIn(list []Partner, country string) []Partner {
	if country == "" {
		return list
	}
	var out []Partner
	for _, p := range list {
		if p.Country == country {
			out = append(out, p)
		}
	}
	return out
}
