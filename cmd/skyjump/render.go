package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cory-johannsen/skyjump/internal/game/character"
	"github.com/cory-johannsen/skyjump/internal/game/session"
	"github.com/cory-johannsen/skyjump/internal/gameserver"
)

// renderer prints announcements and avatar changes, drawing player names in
// their name colors. It implements gameserver.Announcer.
type renderer struct {
	out     io.Writer
	lg      *lipgloss.Renderer
	roster  *session.Manager
	catalog *character.Catalog
	feed    *gameserver.Feed

	announceStyle lipgloss.Style
	eventStyle    lipgloss.Style
	headerStyle   lipgloss.Style
	dimStyle      lipgloss.Style
}

var _ gameserver.Announcer = (*renderer)(nil)

func newRenderer(out io.Writer) *renderer {
	lg := lipgloss.NewRenderer(out)
	return &renderer{
		out: out,
		lg:  lg,
		announceStyle: lg.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFD700")),
		eventStyle: lg.NewStyle().
			Foreground(lipgloss.Color("#CCCCCC")),
		headerStyle: lg.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFD700")).
			Background(lipgloss.Color("#1a1a2e")),
		dimStyle: lg.NewStyle().
			Foreground(lipgloss.Color("#888888")),
	}
}

// attach binds the renderer to the wired game.
func (r *renderer) attach(a *app) {
	r.roster = a.roster
	r.catalog = a.catalog
	r.feed = a.feed
}

// Announce prints pending avatar changes, then msg.
func (r *renderer) Announce(msg string) {
	r.flush()
	fmt.Fprintln(r.out, r.announceStyle.Render("» "+msg))
}

// flush prints every avatar change queued on the feed.
func (r *renderer) flush() {
	if r.feed == nil {
		return
	}
	for {
		select {
		case ev, ok := <-r.feed.Events():
			if !ok {
				return
			}
			fmt.Fprintln(r.out, r.describe(ev))
		default:
			return
		}
	}
}

func (r *renderer) describe(ev gameserver.AvatarEvent) string {
	name := r.name(ev.PlayerID, ev.Name)
	var line string
	switch ev.Kind {
	case gameserver.AvatarSpawned:
		line = fmt.Sprintf("%s spawns as %s", name, r.characterName(ev.Choice))
	case gameserver.AvatarJumped:
		line = fmt.Sprintf("%s jumps: angle %d, power %d", name, ev.Jump.Angle, ev.Jump.Power)
	case gameserver.AvatarCharacter:
		line = fmt.Sprintf("%s becomes %s", name, r.characterName(ev.Choice))
	case gameserver.AvatarGlow:
		if ev.Glow {
			line = fmt.Sprintf("%s glows %s", name, r.swatch(ev.Color))
		} else {
			line = fmt.Sprintf("%s stops glowing", name)
		}
	case gameserver.AvatarNameColor:
		line = fmt.Sprintf("%s changes name color to %s", name, r.swatch(ev.Color))
	case gameserver.AvatarRoundReset:
		return r.dimStyle.Render("  avatars return to the start line")
	default:
		line = fmt.Sprintf("%s: %s", name, ev.Kind)
	}
	return "  " + r.eventStyle.Render(line)
}

// name renders a player's display name in the player's current name color.
func (r *renderer) name(id, fallback string) string {
	display, hex := fallback, ""
	if r.roster != nil {
		if p, ok := r.roster.Get(id); ok {
			display, hex = p.Name, p.NameColor
		}
	}
	if display == "" {
		display = id
	}
	return r.colored(display, hex)
}

func (r *renderer) colored(display, hex string) string {
	style := r.lg.NewStyle().Bold(true)
	if hex != "" {
		style = style.Foreground(lipgloss.Color("#" + hex))
	}
	return style.Render(display)
}

func (r *renderer) swatch(hex string) string {
	return r.lg.NewStyle().Foreground(lipgloss.Color("#" + hex)).Render("#" + hex)
}

func (r *renderer) characterName(choice int) string {
	if r.catalog != nil {
		if c, ok := r.catalog.Get(choice); ok {
			return c.Name
		}
	}
	if choice == 0 {
		return "the default character"
	}
	return fmt.Sprintf("character %d", choice)
}

// standings prints every joined player in rank order.
func (r *renderer) standings() {
	r.flush()
	if r.roster == nil {
		return
	}
	players := r.roster.All()
	session.Rank(players)
	r.table(" standings ", "nobody joined", players)
}

// leaderboard prints stored records already in rank order.
func (r *renderer) leaderboard(players []session.PlayerData) {
	r.table(" leaderboard ", "nobody has played yet", players)
}

func (r *renderer) table(header, empty string, players []session.PlayerData) {
	fmt.Fprintln(r.out, r.headerStyle.Render(header))
	if len(players) == 0 {
		fmt.Fprintln(r.out, r.dimStyle.Render("  "+empty))
		return
	}
	width := 0
	for _, p := range players {
		width = max(width, len(displayName(p)))
	}
	for i, p := range players {
		pad := strings.Repeat(" ", width-len(displayName(p)))
		fmt.Fprintf(r.out, "  %d. %s%s  wins %d  jumps %d  best %d\n",
			i+1, r.colored(displayName(p), p.NameColor), pad, p.Wins, p.Jumps, p.BestHeight)
	}
}

func displayName(p session.PlayerData) string {
	if p.Name == "" {
		return p.ID
	}
	return p.Name
}
