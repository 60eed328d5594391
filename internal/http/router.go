package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Groups     *GroupHandler
	Schedules  *ScheduleHandler
	Calendar   *CalendarHandler
	Planner    *PlannerHandler
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Groups != nil {
		mux.HandleFunc("/groups", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Groups.List(w, r)
			case http.MethodPost:
				cfg.Groups.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
	}
	if cfg.Groups != nil || cfg.Schedules != nil {
		mux.HandleFunc("/groups/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/groups/")
			parts := strings.Split(rest, "/")
			if parts[0] == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithGroupID(r.Context(), parts[0]))

			switch {
			case len(parts) == 2 && parts[1] == "schedule":
				if cfg.Schedules == nil {
					http.NotFound(w, r)
					return
				}
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Schedules.Get(w, r)
			case cfg.Groups == nil:
				http.NotFound(w, r)
			case len(parts) == 1:
				switch r.Method {
				case http.MethodGet:
					cfg.Groups.Get(w, r)
				case http.MethodDelete:
					cfg.Groups.Delete(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodDelete)
				}
			case len(parts) == 2 && parts[1] == "members":
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Groups.AddMember(w, r)
			case len(parts) == 3 && parts[1] == "members" && parts[2] != "":
				if r.Method != http.MethodDelete {
					methodNotAllowed(w, http.MethodDelete)
					return
				}
				cfg.Groups.RemoveMember(w, r, parts[2])
			case len(parts) == 2 && parts[1] == "slots":
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Groups.AddSlot(w, r)
			case len(parts) == 3 && parts[1] == "slots" && parts[2] != "":
				if r.Method != http.MethodDelete {
					methodNotAllowed(w, http.MethodDelete)
					return
				}
				cfg.Groups.RemoveSlot(w, r, parts[2])
			default:
				http.NotFound(w, r)
			}
		})
	}

	if cfg.Calendar != nil || cfg.Planner != nil {
		mux.HandleFunc("/users/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/users/")
			parts := strings.Split(rest, "/")
			if len(parts) != 2 || parts[0] == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithUserID(r.Context(), parts[0]))

			switch parts[1] {
			case "week":
				if cfg.Calendar == nil {
					http.NotFound(w, r)
					return
				}
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Calendar.Week(w, r)
			case "assignments":
				if cfg.Planner == nil {
					http.NotFound(w, r)
					return
				}
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Planner.AddAssignment(w, r)
			case "exams":
				if cfg.Planner == nil {
					http.NotFound(w, r)
					return
				}
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Planner.AddExam(w, r)
			case "sessions":
				if cfg.Planner == nil {
					http.NotFound(w, r)
					return
				}
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Planner.AddSession(w, r)
			default:
				http.NotFound(w, r)
			}
		})
	}

	if cfg.Planner != nil {
		mux.HandleFunc("/holidays", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Planner.SetHoliday(w, r)
		})
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
