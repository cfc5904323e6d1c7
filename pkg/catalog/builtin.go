// Package catalog provides the motions a batch debates: the built-in list,
// YAML/JSON catalogue files and loam document directories.
package catalog

import "github.com/aretw0/agora/pkg/domain"

// Builtin returns the eight motions debated when no topic is supplied.
func Builtin() []domain.Motion {
	return []domain.Motion{
		{
			Topic:   "Forms of Government: Democracy vs. Autocracy vs. Technocracy",
			Stances: []string{"democracy", "autocracy", "technocracy"},
		},
		{
			Topic:   "Electoral Systems: First Past the Post vs. Proportional Representation vs. Ranked Choice Voting",
			Stances: []string{"first past the post", "proportional representation", "ranked choice voting"},
		},
		{
			Topic:   "Climate Policy: Carbon Tax vs. Cap-and-Trade vs. Direct Regulation",
			Stances: []string{"carbon tax", "cap-and-trade", "direct regulation"},
		},
		{
			Topic:   "Moral Frameworks: Utilitarianism vs. Deontology vs. Virtue Ethics",
			Stances: []string{"utilitarianism", "deontology", "virtue ethics"},
		},
		{
			Topic:   "Cultural Representation: Nationalism vs. Multiculturalism vs. Cosmopolitanism",
			Stances: []string{"nationalism", "multiculturalism", "cosmopolitanism"},
		},
		{
			Topic:   "Immigration Policies: Open Borders vs. Controlled Immigration vs. Merit-Based Systems",
			Stances: []string{"open borders", "controlled immigration", "merit-based systems"},
		},
		{
			Topic:   "Social Media Regulation: Self-Regulation vs. Government Oversight vs. Community Moderation",
			Stances: []string{"self-regulation", "government oversight", "community moderation"},
		},
		{
			Topic:   "Income Distribution: Universal Basic Income vs. Progressive Taxation vs. Flat Tax",
			Stances: []string{"universal basic income", "progressive taxation", "flat tax"},
		},
	}
}
