package ranking

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ParseHTML reads the public team ranking page. Each ".ranked-team" block
// provides the team name and the ".nick" cells of its lineup.
func ParseHTML(r io.Reader) ([]Team, ParseStats, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, ParseStats{}, fmt.Errorf("parse ranking html: %w", err)
	}

	var (
		teams []Team
		stats ParseStats
	)
	doc.Find(".ranked-team").Each(func(_ int, block *goquery.Selection) {
		name := strings.TrimSpace(block.Find(".ranking-header .name").First().Text())
		if name == "" {
			name = strings.TrimSpace(block.Find(".name").First().Text())
		}
		if name == "" {
			stats.Skipped++
			return
		}
		var players []string
		block.Find(".lineup .nick, .player-holder .nick").Each(func(_ int, cell *goquery.Selection) {
			if nick := strings.TrimSpace(cell.Text()); nick != "" {
				players = append(players, nick)
			}
		})
		teams = append(teams, Team{Name: name, Players: players})
		stats.Teams++
	})
	return teams, stats, nil
}
