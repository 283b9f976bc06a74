package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProjectStatus is the lifecycle state of a project
type ProjectStatus string

const (
	ProjectPlanning   ProjectStatus = "planning"
	ProjectInProgress ProjectStatus = "in-progress"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectOnHold     ProjectStatus = "on-hold"
)

// Valid reports whether s is one of the known project states.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectPlanning, ProjectInProgress, ProjectCompleted, ProjectOnHold:
		return true
	}
	return false
}

// MilestoneStatus is the state of a project milestone
type MilestoneStatus string

const (
	MilestonePending    MilestoneStatus = "pending"
	MilestoneInProgress MilestoneStatus = "in-progress"
	MilestoneCompleted  MilestoneStatus = "completed"
)

// Valid reports whether s is one of the known milestone states.
func (s MilestoneStatus) Valid() bool {
	switch s {
	case MilestonePending, MilestoneInProgress, MilestoneCompleted:
		return true
	}
	return false
}

// TaskStatus is the state of a project task
type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in-progress"
	TaskDone       TaskStatus = "done"
)

// Valid reports whether s is one of the known task states.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskDone:
		return true
	}
	return false
}

// Project is an idea owned by a creator ("innovator"), optionally assigned to a developer
type Project struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name           string              `bson:"name" json:"name"`
	Description    string              `bson:"description" json:"description"`
	Innovator      primitive.ObjectID  `bson:"innovator" json:"innovator"`
	InnovatorEmail string              `bson:"innovatorEmail" json:"innovator_email"`
	Developer      *primitive.ObjectID `bson:"developer,omitempty" json:"developer,omitempty"`
	Status         ProjectStatus       `bson:"status" json:"status"`
	Budget         Budget              `bson:"budget" json:"budget"`
	Technologies   []string            `bson:"technologies" json:"technologies"`
	Milestones     []Milestone         `bson:"milestones" json:"milestones"`
	Tasks          []Task              `bson:"tasks" json:"tasks"`
	Progress       int                 `bson:"progress" json:"progress"` // percentage in [0,100]
	Analysis       *AnalysisResult     `bson:"analysis,omitempty" json:"analysis,omitempty"`
	CreatedAt      time.Time           `bson:"createdAt" json:"created_at"`
	UpdatedAt      time.Time           `bson:"updatedAt" json:"updated_at"`
}

// Budget is the expected budget range
type Budget struct {
	Min      float64 `bson:"min" json:"min"`
	Max      float64 `bson:"max" json:"max"`
	Currency string  `bson:"currency,omitempty" json:"currency,omitempty"`
}

// Milestone groups tasks toward a deliverable
type Milestone struct {
	ID      primitive.ObjectID   `bson:"_id" json:"id"`
	Title   string               `bson:"title" json:"title"`
	Status  MilestoneStatus      `bson:"status" json:"status"`
	DueDate *time.Time           `bson:"dueDate,omitempty" json:"due_date,omitempty"`
	Tasks   []primitive.ObjectID `bson:"tasks" json:"tasks"`
}

// Task is a unit of work within a project
type Task struct {
	ID         primitive.ObjectID  `bson:"_id" json:"id"`
	Title      string              `bson:"title" json:"title"`
	Status     TaskStatus          `bson:"status" json:"status"`
	AssignedTo *primitive.ObjectID `bson:"assignedTo,omitempty" json:"assigned_to,omitempty"`
}

// ValidProgress reports whether p is a percentage in [0,100].
func ValidProgress(p int) bool {
	return p >= 0 && p <= 100
}

// ReferencedUserIDs returns every user referenced by the project.
func (p *Project) ReferencedUserIDs() []primitive.ObjectID {
	ids := []primitive.ObjectID{p.Innovator}
	if p.Developer != nil {
		ids = append(ids, *p.Developer)
	}
	for _, task := range p.Tasks {
		if task.AssignedTo != nil {
			ids = append(ids, *task.AssignedTo)
		}
	}
	return ids
}

// ProjectResponse is a project with its user references populated.
// Populated fields are nil when the referenced user no longer exists.
type ProjectResponse struct {
	Project
	InnovatorProfile *PublicProfile            `json:"innovator_profile"`
	DeveloperProfile *PublicProfile            `json:"developer_profile,omitempty"`
	Assignees        map[string]*PublicProfile `json:"assignees,omitempty"`
}

// PopulateProject resolves the user references of p from users.
func PopulateProject(p Project, users []User) ProjectResponse {
	byID := make(map[primitive.ObjectID]*User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	resp := ProjectResponse{Project: p}
	if u, ok := byID[p.Innovator]; ok {
		resp.InnovatorProfile = u.ToPublicProfile()
	}
	if p.Developer != nil {
		if u, ok := byID[*p.Developer]; ok {
			resp.DeveloperProfile = u.ToPublicProfile()
		}
	}
	for _, task := range p.Tasks {
		if task.AssignedTo == nil {
			continue
		}
		if u, ok := byID[*task.AssignedTo]; ok {
			if resp.Assignees == nil {
				resp.Assignees = make(map[string]*PublicProfile)
			}
			resp.Assignees[task.AssignedTo.Hex()] = u.ToPublicProfile()
		}
	}
	return resp
}
