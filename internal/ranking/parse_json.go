package ranking

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseJSON reads a ranking document. The top level may be an array of teams or
// an object holding one under "teams", "ranking", or "data". Team names come
// from teamName, name, team.name, or title; players are strings or objects
// with nickname, nick, or name. Unreadable teams are skipped and counted.
func ParseJSON(data []byte) ([]Team, ParseStats, error) {
	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, ParseStats{}, fmt.Errorf("decode ranking json: %w", err)
	}

	entries, ok := teamList(root)
	if !ok {
		return nil, ParseStats{}, fmt.Errorf("ranking json: no team list found")
	}

	var (
		teams []Team
		stats ParseStats
	)
	for _, entry := range entries {
		team, ok := parseTeam(entry)
		if !ok {
			stats.Skipped++
			continue
		}
		teams = append(teams, team)
		stats.Teams++
	}
	return teams, stats, nil
}

// ParsePlayerSearch reads a player search response. It accepts a players
// array at the top level, inside an object, or inside the first element of a
// category array.
func ParsePlayerSearch(data []byte) ([]Player, error) {
	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode search json: %w", err)
	}

	var raw []any
	switch value := root.(type) {
	case []any:
		for _, element := range value {
			if obj, ok := element.(map[string]any); ok {
				if list, ok := obj["players"].([]any); ok {
					raw = append(raw, list...)
					continue
				}
			}
			raw = append(raw, element)
		}
	case map[string]any:
		if list, ok := value["players"].([]any); ok {
			raw = list
		}
	}

	players := make([]Player, 0, len(raw))
	for _, element := range raw {
		obj, ok := element.(map[string]any)
		if !ok {
			continue
		}
		nick := firstString(obj, "nickName", "nickname", "nick", "name")
		if nick == "" {
			continue
		}
		players = append(players, Player{Nickname: nick, Team: teamName(obj["team"])})
	}
	return players, nil
}

func teamList(root any) ([]any, bool) {
	switch value := root.(type) {
	case []any:
		return value, true
	case map[string]any:
		for _, key := range []string{"teams", "ranking", "data"} {
			switch nested := value[key].(type) {
			case []any:
				return nested, true
			case map[string]any:
				if list, ok := teamList(nested); ok {
					return list, true
				}
			}
		}
	}
	return nil, false
}

func parseTeam(entry any) (Team, bool) {
	obj, ok := entry.(map[string]any)
	if !ok {
		return Team{}, false
	}
	name := firstString(obj, "teamName", "name")
	if name == "" {
		name = teamName(obj["team"])
	}
	if name == "" {
		name = firstString(obj, "title")
	}
	if name == "" {
		return Team{}, false
	}

	rawPlayers, _ := obj["players"].([]any)
	if rawPlayers == nil {
		if team, ok := obj["team"].(map[string]any); ok {
			rawPlayers, _ = team["players"].([]any)
		}
	}
	players := make([]string, 0, len(rawPlayers))
	for _, raw := range rawPlayers {
		switch player := raw.(type) {
		case string:
			if nick := strings.TrimSpace(player); nick != "" {
				players = append(players, nick)
			}
		case map[string]any:
			if nick := firstString(player, "nickname", "nick", "name"); nick != "" {
				players = append(players, nick)
			}
		}
	}
	return Team{Name: name, Players: players}, true
}

func teamName(value any) string {
	switch team := value.(type) {
	case string:
		return strings.TrimSpace(team)
	case map[string]any:
		return firstString(team, "name", "teamName")
	}
	return ""
}

func firstString(obj map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := obj[key].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}
