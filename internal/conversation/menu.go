package conversation

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Menu holds the fixed option tree and the canned answers for its leaves.
// It is read-only once built.
type Menu struct {
	Primary   []string            `yaml:"primary"`
	Secondary map[string][]string `yaml:"secondary"`
	Answers   map[string]string   `yaml:"answers"`
}

// DefaultMenu returns the built-in Female Foundry menu.
func DefaultMenu() *Menu {
	return &Menu{
		Primary: []string{
			"VC & Funding Insights",
			"Female Foundry Programs",
			"Community & Stories",
			"Contact & Partners",
		},
		Secondary: map[string][]string{
			"VC & Funding Insights":   {"Headline metrics", "Deep Tech & AI", "Using the Index"},
			"Female Foundry Programs": {"AI Visionaries", "AI Hustle", "Sunday Newsletter"},
			"Community & Stories":     {"Join the community", "Campaigns", "Shop"},
			"Contact & Partners":      {"Contact", "Partners", "Media coverage"},
		},
		Answers: defaultAnswers(),
	}
}

func defaultAnswers() map[string]string {
	return map[string]string{
		"Headline metrics": "• €5.76B raised by female-founded startups in Europe during 2024 (1,305 deals across 1,196 companies).\n" +
			"• Represents roughly 12% of all European VC; deep tech attracts about one-third of that capital.\n" +
			"• The Female Innovation Index aggregates 1,200+ survey responses and tracks 145k+ companies.",
		"Deep Tech & AI": "• Deep tech companies capture roughly one-third of the capital raised by female-founded startups.\n" +
			"• Data & AI founders cite funding (67 mentions) and slow adoption (47) as top bottlenecks.\n" +
			"• Health & life-science founders echo funding, adoption, and economic uncertainty challenges—filter Dealroom tags for precise counts.",
		"Using the Index": "• Use Dealroom exports DR_FF_C_1 (female-founded VC) and DR_MC_C_5 (monthly capital) for charts.\n" +
			"• Funnel views reveal drop-off points across awareness, acceleration, and funding.\n" +
			"• Start from the 2025 Index landing page for methodology and download links.",
		"AI Visionaries": "• Female Foundry’s AI incubator with Google Cloud for frontier AI founders.\n" +
			"• ‘Visit AI Visionaries’ shows cohorts, mentors, curriculum, and application windows.\n" +
			"• Offers tailored GTM support, mentor office hours, and showcase opportunities.",
		"AI Hustle": "• Free monthly 1-hour clinic with Agata Nowicka (up to three founders).\n" +
			"• Tap the homepage ‘Sign Up’ CTA to request a slot.\n" +
			"• Ideal for quick GTM troubleshooting, warm intros, and accountability.",
		"Sunday Newsletter": "• Weekly roundup covering funding news, founder tactics, and ecosystem signals.\n" +
			"• Use the homepage ‘Read’ button to browse the latest edition or subscribe.\n" +
			"• Designed for female founders, operators, and allies tracking European venture.",
		"Join the community": "• 7,000+ founders, investors, and operators focused on female-led innovation.\n" +
			"• Click ‘Join the Community’ to request access to intros, events, and resources.\n" +
			"• Members tap curated deal flow, mentor sessions, and partner offers.",
		"Campaigns": "• ‘Celebrating female founders’ spotlights stories you can feature or amplify.\n" +
			"• Use the ‘Watch all’ CTA to stream short films and social assets.\n" +
			"• Great for investor updates, internal culture decks, or event content.",
		"Shop": "• Female Foundry Shop offers identity assets, merch, and partner gifting ideas.\n" +
			"• Linked from the site footer—ships worldwide with limited drops.\n" +
			"• Popular for event swag, partner onboarding, or community giveaways.",
		"Contact": "• Email HELLO@FEMALEFOUNDRY.CO for partnerships or press.\n" +
			"• HQ: 11 Welbeck Street, W1G 9XZ, London (by appointment).\n" +
			"• Footer also links to About, Partners, Careers, and Privacy Policy.",
		"Partners": "• Explore corporate and ecosystem partners via the footer link.\n" +
			"• Collaboration areas include scouting, thought leadership, and program support.\n" +
			"• Submit interest through the partner form for a follow-up call.",
		"Media coverage": "• Featured in FT Adviser, Maddyness, tech.eu, UKTN, Sifted, Startups Magazine, TFN, and more.\n" +
			"• Logos appear above the partner grid for easy export to decks.\n" +
			"• Cite coverage to boost credibility with LPs, corporates, or press.",
	}
}

// LoadMenuFile reads a YAML menu from path.
func LoadMenuFile(path string) (*Menu, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("conversation: read menu file: %w", err)
	}
	return ParseMenu(data)
}

// ParseMenu decodes and validates a YAML menu.
func ParseMenu(data []byte) (*Menu, error) {
	var m Menu
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("conversation: decode menu: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks that every primary option is unique and has follow-ups.
func (m *Menu) Validate() error {
	if m == nil || len(m.Primary) == 0 {
		return errors.New("conversation: menu has no primary options")
	}
	seen := make(map[string]struct{}, len(m.Primary))
	for _, p := range m.Primary {
		key := strings.ToLower(strings.TrimSpace(p))
		if key == "" {
			return errors.New("conversation: menu has a blank primary option")
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("conversation: duplicate primary option %q", p)
		}
		seen[key] = struct{}{}
		if len(m.Secondary[p]) == 0 {
			return fmt.Errorf("conversation: primary option %q has no follow-up options", p)
		}
	}
	return nil
}

// PrimaryOptions returns a copy of the primary list in display order.
func (m *Menu) PrimaryOptions() []string {
	return append([]string{}, m.Primary...)
}

// SecondaryOptions returns a copy of the follow-ups under primary, or an
// empty list.
func (m *Menu) SecondaryOptions(primary string) []string {
	return append([]string{}, m.Secondary[primary]...)
}

// Answer returns the canned text for a leaf label.
func (m *Menu) Answer(label string) (string, bool) {
	text, ok := m.Answers[label]
	return text, ok && strings.TrimSpace(text) != ""
}

// matchOption returns the option equal to text ignoring case and
// surrounding whitespace.
func matchOption(text string, options []string) (string, bool) {
	lowered := strings.ToLower(strings.TrimSpace(text))
	for _, option := range options {
		if lowered == strings.ToLower(option) {
			return option, true
		}
	}
	return "", false
}
