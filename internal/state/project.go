package state

import "github.com/dmorales/huq/internal/models"

// ProjectState is the project slice. Active mirrors the backend's is_active
// flags; it is never derived locally.
type ProjectState struct {
	Projects []models.Project
	ActiveID string
	Err      string
}

// ProjectAction mutates the project slice.
type ProjectAction interface {
	Action
	projectAction()
}

type projectMarker struct{}

func (projectMarker) isAction()      {}
func (projectMarker) projectAction() {}

// SetProjects replaces the project list and re-derives the active reference
// from the server's is_active flags.
type SetProjects struct {
	projectMarker
	Projects []models.Project
}

// AddProject prepends a newly created project.
type AddProject struct {
	projectMarker
	Project models.Project
}

// UpdateProjectItem rewrites one project in place.
type UpdateProjectItem struct {
	projectMarker
	Project models.Project
}

// RemoveProject drops a deleted project; deleting the active project clears
// the active reference.
type RemoveProject struct {
	projectMarker
	ID string
}

// SetProjectError records a failure message.
type SetProjectError struct {
	projectMarker
	Err string
}

func reduceProjects(s ProjectState, action ProjectAction) ProjectState {
	switch a := action.(type) {
	case SetProjects:
		s.Projects = a.Projects
		s.ActiveID = ""
		for _, p := range a.Projects {
			if p.IsActive {
				s.ActiveID = p.ID
				break
			}
		}
		s.Err = ""
	case AddProject:
		s.Projects = append([]models.Project{a.Project}, s.Projects...)
	case UpdateProjectItem:
		out := make([]models.Project, len(s.Projects))
		for i, p := range s.Projects {
			if p.ID == a.Project.ID {
				p = a.Project
			}
			out[i] = p
		}
		s.Projects = out
	case RemoveProject:
		out := s.Projects[:0:0]
		for _, p := range s.Projects {
			if p.ID != a.ID {
				out = append(out, p)
			}
		}
		s.Projects = out
		if s.ActiveID == a.ID {
			s.ActiveID = ""
		}
	case SetProjectError:
		s.Err = a.Err
	}
	return s
}

// Active returns the active project, if any.
func (s ProjectState) Active() (models.Project, bool) {
	if s.ActiveID == "" {
		return models.Project{}, false
	}
	for _, p := range s.Projects {
		if p.ID == s.ActiveID {
			return p, true
		}
	}
	return models.Project{}, false
}
