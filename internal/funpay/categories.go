package funpay

import "strings"

// Categories is an explicitly constructed lookup table of monitorable
// showcases. It is loaded once by the caller and passed where needed; there
// is deliberately no package-level cache.
type Categories struct {
	entries []Category
}

// DefaultCategories covers the showcases the tool is most often pointed at.
// Anything else is reachable by pasting a direct URL at the prompt.
func DefaultCategories() *Categories {
	return &Categories{entries: []Category{
		{Name: "Robux (Roblox currency)", URL: "/chips/99/"},
		{Name: "Roblox accounts", URL: "/lots/98/"},
		{Name: "Rust items", URL: "/lots/135/"},
		{Name: "Rust accounts", URL: "/lots/134/"},
		{Name: "CS2 skins", URL: "/lots/149/"},
		{Name: "CS2 accounts", URL: "/lots/148/"},
		{Name: "Dota 2 items", URL: "/lots/81/"},
		{Name: "Brawl Stars accounts", URL: "/lots/202/"},
		{Name: "Genshin Impact accounts", URL: "/lots/210/"},
		{Name: "Minecraft accounts", URL: "/lots/52/"},
		{Name: "Steam wallet top-up", URL: "/lots/716/"},
		{Name: "Telegram Stars", URL: "/lots/1101/"},
	}}
}

func NewCategories(entries []Category) *Categories {
	return &Categories{entries: append([]Category(nil), entries...)}
}

func (c *Categories) All() []Category { return append([]Category(nil), c.entries...) }

// Find returns categories matching query as a case-insensitive substring,
// prefix matches first. An empty query matches nothing.
func (c *Categories) Find(query string) []Category {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var starts, contains []Category
	for _, e := range c.entries {
		name := strings.ToLower(e.Name)
		switch {
		case strings.HasPrefix(name, q):
			starts = append(starts, e)
		case strings.Contains(name, q):
			contains = append(contains, e)
		}
	}
	return append(starts, contains...)
}
