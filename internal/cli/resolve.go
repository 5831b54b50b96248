package cli

import (
	"context"

	"github.com/alexanderramin/studyfocus/internal/domain"
)

// resolveTarget maps SUBJECT CHAPTER TOPIC arguments, ids or names, to a
// timer target.
func resolveTarget(ctx context.Context, app *App, args []string) (domain.TimerTarget, error) {
	ids, err := app.Study.ResolvePath(ctx, args...)
	if err != nil {
		return domain.TimerTarget{}, err
	}
	return domain.TimerTarget{SubjectID: ids[0], ChapterID: ids[1], TopicID: ids[2]}, nil
}

// pathNames returns the display names along ids, falling back to the ids.
func pathNames(st domain.LedgerState, ids ...string) []string {
	names := append([]string(nil), ids...)
	for _, s := range st.Subjects {
		if len(ids) == 0 || s.ID != ids[0] {
			continue
		}
		names[0] = s.Name
		for _, c := range s.Chapters {
			if len(ids) < 2 || c.ID != ids[1] {
				continue
			}
			names[1] = c.Name
			for _, t := range c.Topics {
				if len(ids) == 3 && t.ID == ids[2] {
					names[2] = t.Name
					break
				}
			}
			break
		}
		break
	}
	return names
}
