package content

import (
	"fmt"
	"strings"

	"github.com/wricardo/shanghai-tycoon/game/engine"
)

var bandWording = map[engine.EventBand]string{
	engine.BandFavorable:   "a pleasant surprise that earns money",
	engine.BandUnfavorable: "a minor misfortune that costs a little money",
	engine.BandSevere:      "a serious disaster that costs a lot of money",
}

func personalPrompt(req engine.PersonalEventRequest) string {
	lo, hi := engine.BandRange(req.Band)
	return fmt.Sprintf(`Invent a "fate" event for a Shanghai property trading board game.
Player: %s (%s)
Space: %s
Round: %d
Kind of event: %s.

Reply with JSON only:
{"title": "short title", "description": "one humorous sentence", "cash_delta": integer between %d and %d}`,
		req.Player.Name, req.Player.Description, req.Space, req.Round, bandWording[req.Band], lo, hi)
}

func globalPrompt(req engine.GlobalEventRequest) string {
	target := `"ALL"`
	scope := "everyone in the city"
	if req.Partial {
		target = `one of "POOR", "RICH", "LANDLORDS", "ODD_ID"`
		scope = "one specific group of players (the poor, the rich, landlords, or players with an odd seat number)"
	}
	return fmt.Sprintf(`Invent a global economic event for round %d of a Shanghai property trading board game.
It affects %s.

Reply with JSON only:
{"title": "event name", "description": "one sentence", "target": %s, "percentage": integer between -30 and 30 (change of cash in percent)}`,
		req.Round, scope, target)
}

var actionWording = map[engine.CatastropheAction]string{
	engine.ResetCashToFloor:   "every player's cash is wiped out down to pocket money",
	engine.ZeroPropertyLevels: "every building upgrade in the city is destroyed",
	engine.ShuffleCash:        "everyone's bank balances get swapped around",
	engine.HalveCash:          "everyone loses half of their cash",
}

func catastrophePrompt(req engine.CatastropheRequest) string {
	return fmt.Sprintf(`Invent a rare, devastating "black swan" event for round %d of a Shanghai property trading board game.
What happens: %s.

Reply with JSON only:
{"title": "dramatic title", "description": "one sentence"}`,
		req.Round, actionWording[req.Action])
}

var situationWording = map[string]string{
	engine.SituationPurchase:    "just bought %s",
	engine.SituationCollectRent: "just collected rent at %s",
}

func banterPrompt(req engine.BanterRequest) string {
	situation := req.Situation
	if format, ok := situationWording[req.Situation]; ok {
		situation = fmt.Sprintf(format, req.Subject)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Character: %s\n", req.Speaker.Name)
	if req.Speaker.Catchphrase != "" {
		fmt.Fprintf(&sb, "Catchphrase: %q\n", req.Speaker.Catchphrase)
	}
	fmt.Fprintf(&sb, "Situation: %s\n\n", situation)
	sb.WriteString("Write one very short, funny remark (at most 15 words) in this character's voice. Reply with the remark only, no quotes.")
	return sb.String()
}
