package handlers

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"creatorsmeet/internal/huggingface"
	"creatorsmeet/internal/models"
	"creatorsmeet/internal/services"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeUsers is an in-memory UserStore
type fakeUsers struct {
	mu           sync.Mutex
	byID         map[primitive.ObjectID]*models.User
	requirements map[string]*models.ProjectRequirements
	getErr       error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		byID:         make(map[primitive.ObjectID]*models.User),
		requirements: make(map[string]*models.ProjectRequirements),
	}
}

func (f *fakeUsers) add(u models.User) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	f.byID[u.ID] = &u
	return &u
}

func (f *fakeUsers) CreateUser(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == user.Email {
			return services.ErrEmailTaken
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.CreatedAt = time.Now()
	copied := *user
	f.byID[user.ID] = &copied
	return nil
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, services.ErrUserNotFound
}

func (f *fakeUsers) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, services.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUsers) UpdatePasswordHash(_ context.Context, id primitive.ObjectID, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return services.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeUsers) UpdateProfileImage(_ context.Context, id primitive.ObjectID, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return services.ErrUserNotFound
	}
	u.ProfileImage = path
	return nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, id primitive.ObjectID, req *models.UpdateProfileRequest) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, services.ErrUserNotFound
	}
	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Bio != nil {
		u.Bio = *req.Bio
	}
	if req.Skills != nil {
		u.Skills = req.Skills
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUsers) SetProjectRequirements(_ context.Context, email string, reqs *models.ProjectRequirements) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requirements[email] = reqs
	return nil
}

func (f *fakeUsers) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.byID)), nil
}

func (f *fakeUsers) all() []models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.User, 0, len(f.byID))
	for _, u := range f.byID {
		out = append(out, *u)
	}
	return out
}

// fakeTips is an in-memory TipStore that populates from fakeUsers
type fakeTips struct {
	mu    sync.Mutex
	tips  []models.Tip
	users *fakeUsers
}

func (f *fakeTips) List(_ context.Context, _ int64) ([]models.TipResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return models.PopulateTips(f.tips, f.users.all()), nil
}

func (f *fakeTips) Create(_ context.Context, author *models.User, content string) (*models.TipResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tip := models.Tip{ID: primitive.NewObjectID(), Content: content, Author: author.ID, CreatedAt: time.Now()}
	f.tips = append(f.tips, tip)
	populated := models.PopulateTips([]models.Tip{tip}, []models.User{*author})
	return &populated[0], nil
}

func (f *fakeTips) Get(_ context.Context, id primitive.ObjectID) (*models.Tip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tips {
		if f.tips[i].ID == id {
			copied := f.tips[i]
			return &copied, nil
		}
	}
	return nil, services.ErrTipNotFound
}

func (f *fakeTips) ToggleLike(_ context.Context, tipID, userID primitive.ObjectID) (*models.TipResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tips {
		if f.tips[i].ID != tipID {
			continue
		}
		likes := f.tips[i].Likes[:0:0]
		found := false
		for _, id := range f.tips[i].Likes {
			if id == userID {
				found = true
				continue
			}
			likes = append(likes, id)
		}
		if !found {
			likes = append(likes, userID)
		}
		f.tips[i].Likes = likes
		populated := models.PopulateTips([]models.Tip{f.tips[i]}, f.users.all())
		return &populated[0], nil
	}
	return nil, services.ErrTipNotFound
}

func (f *fakeTips) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tips {
		if f.tips[i].ID == id {
			f.tips = append(f.tips[:i], f.tips[i+1:]...)
			return nil
		}
	}
	return services.ErrTipNotFound
}

func (f *fakeTips) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tips)
}

// fakeProjects is an in-memory ProjectStore
type fakeProjects struct {
	mu       sync.Mutex
	projects map[primitive.ObjectID]*models.Project
	upserts  int
}

func newFakeProjects() *fakeProjects {
	return &fakeProjects{projects: make(map[primitive.ObjectID]*models.Project)}
}

func (f *fakeProjects) UpsertRequirements(_ context.Context, innovator *models.User, name, description string, analysis *models.AnalysisResult) (*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	if name == "" {
		name = services.DefaultProjectName
	}
	for _, p := range f.projects {
		if p.InnovatorEmail == innovator.Email && p.Name == name {
			p.Description = description
			p.Analysis = analysis
			p.Technologies = analysis.Technologies
			copied := *p
			return &copied, nil
		}
	}
	p := &models.Project{
		ID:             primitive.NewObjectID(),
		Name:           name,
		Description:    description,
		Innovator:      innovator.ID,
		InnovatorEmail: innovator.Email,
		Status:         models.ProjectPlanning,
		Technologies:   analysis.Technologies,
		Analysis:       analysis,
	}
	f.projects[p.ID] = p
	copied := *p
	return &copied, nil
}

func (f *fakeProjects) ListForUser(_ context.Context, userID primitive.ObjectID) ([]models.ProjectResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ProjectResponse
	for _, p := range f.projects {
		if p.Innovator == userID || (p.Developer != nil && *p.Developer == userID) {
			out = append(out, models.ProjectResponse{Project: *p})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeProjects) Get(_ context.Context, id primitive.ObjectID) (*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[id]
	if !ok {
		return nil, services.ErrProjectNotFound
	}
	copied := *p
	return &copied, nil
}

func (f *fakeProjects) GetPopulated(ctx context.Context, id primitive.ObjectID) (*models.ProjectResponse, error) {
	p, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.ProjectResponse{Project: *p}, nil
}

func (f *fakeProjects) Update(_ context.Context, id primitive.ObjectID, req *models.UpdateProjectRequest) (*models.ProjectResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[id]
	if !ok {
		return nil, services.ErrProjectNotFound
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
	if req.Progress != nil {
		p.Progress = *req.Progress
	}
	return &models.ProjectResponse{Project: *p}, nil
}

// fakeAnalyzer returns canned results
type fakeAnalyzer struct {
	result  *models.AnalysisResult
	matches []models.DeveloperMatch
	err     error
	calls   int
}

func (f *fakeAnalyzer) Analyze(_ context.Context, _ string) (*models.AnalysisResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeAnalyzer) MatchDevelopers(_ context.Context, _ string, limit int) ([]models.DeveloperMatch, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.matches) {
		return f.matches[:limit], nil
	}
	return f.matches, nil
}

// fakeProbe is a DatabaseProbe
type fakeProbe struct{ err error }

func (f fakeProbe) Ping(context.Context) error { return f.err }
func (f fakeProbe) Name() string               { return "creators_meet_test" }

// fakeClassifier is a Classifier returning a fixed best label
type fakeClassifier struct{ err error }

func (f fakeClassifier) Classify(_ context.Context, _ string, labels []string, _ bool) (*huggingface.Classification, error) {
	if f.err != nil {
		return nil, f.err
	}
	scores := make([]float64, len(labels))
	if len(scores) > 0 {
		scores[0] = 1
	}
	return &huggingface.Classification{Labels: labels, Scores: scores}, nil
}

var errBoom = errors.New("boom")
