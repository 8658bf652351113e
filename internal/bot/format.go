package bot

import (
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"day-scheduler/internal/model"
	"day-scheduler/internal/service"
)

const maxKeyboardEntries = 20

const helpText = `🗓 <b>Day scheduler</b>

/today — today's schedule
/sync [n] — replace today's schedule with template n (default 1)
/done &lt;id&gt; — mark an entry done
/undo &lt;id&gt; — mark an entry open again
/templates — list templates and their task counts
/help — this message`

// allowedChat reports whether chatID may talk to the bot. Zero accepts everyone.
func allowedChat(configured, chatID int64) bool {
	return configured == 0 || configured == chatID
}

func parseEntryID(args string) (uint, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(args), "#")
	if raw == "" {
		return 0, errors.New("usage: /done <id> or /undo <id>")
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%q is not an entry id", raw)
	}
	return uint(id), nil
}

func parseTemplateArg(args string) (int, error) {
	raw := strings.TrimSpace(args)
	if raw == "" {
		return service.MinTemplateID, nil
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("template must be a number from %d to %d", service.MinTemplateID, service.MaxTemplateID)
	}
	if err := service.CheckTemplateID(id); err != nil {
		return 0, err
	}
	return id, nil
}

// parseCallback decodes "done:<id>" and "undo:<id>" button payloads.
func parseCallback(data string) (id uint, completed bool, ok bool) {
	var raw string
	switch {
	case strings.HasPrefix(data, cbDonePrefix):
		raw, completed = strings.TrimPrefix(data, cbDonePrefix), true
	case strings.HasPrefix(data, cbUndoPrefix):
		raw = strings.TrimPrefix(data, cbUndoPrefix)
	default:
		return 0, false, false
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return 0, false, false
	}
	return uint(n), completed, true
}

// entryKeyboard builds one toggle button per entry. Nil when there is nothing to show.
func entryKeyboard(entries []model.ScheduleEntry) *tgbotapi.InlineKeyboardMarkup {
	if len(entries) == 0 {
		return nil
	}
	if len(entries) > maxKeyboardEntries {
		entries = entries[:maxKeyboardEntries]
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, (len(entries)+1)/2)
	var row []tgbotapi.InlineKeyboardButton
	for _, entry := range entries {
		label := "✅ " + shortTitle(entry.Name, 24)
		data := fmt.Sprintf("%s%d", cbDonePrefix, entry.ID)
		if entry.Completed {
			label = "↩️ " + shortTitle(entry.Name, 24)
			data = fmt.Sprintf("%s%d", cbUndoPrefix, entry.ID)
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, data))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}

func markedText(entry *model.ScheduleEntry) string {
	state := "✅ Done"
	if !entry.Completed {
		state = "↩️ Open again"
	}
	return fmt.Sprintf("%s: <code>%s</code> %s <i>#%d</i>", state, entry.StartTime, escape(entry.Name), entry.ID)
}

func templatesText(templates []model.Template) string {
	var builder strings.Builder
	builder.WriteString("📚 <b>Templates</b>\n")
	for _, tpl := range templates {
		noun := "tasks"
		if tpl.TaskCount == 1 {
			noun = "task"
		}
		builder.WriteString(fmt.Sprintf("\n%d. %s: %d %s", tpl.ID, escape(tpl.Name), tpl.TaskCount, noun))
	}
	builder.WriteString("\n\nLoad one with /sync &lt;n&gt;.")
	return builder.String()
}

func shortTitle(title string, maxLen int) string {
	title = strings.TrimSpace(title)
	if utf8.RuneCountInString(title) <= maxLen {
		return title
	}
	runes := []rune(title)
	return string(runes[:maxLen-1]) + "…"
}

func escape(s string) string {
	return html.EscapeString(s)
}
