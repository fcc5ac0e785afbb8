package web

import (
	"net/http"
	"strings"

	userStore "stayfit/internal/adapters/storage/user"
	"stayfit/internal/domain/i18n"
	"stayfit/internal/domain/policy"
	domainUser "stayfit/internal/domain/user"
)

// userInput is the admin create body.
type userInput struct {
	ExternalID      string               `json:"externalId"`
	Email           string               `json:"email"`
	FirstName       string               `json:"firstName"`
	LastName        string               `json:"lastName"`
	Role            string               `json:"role"`
	Phone           string               `json:"phone"`
	ProfilePic      string               `json:"profilePic"`
	Bio             i18n.LocalizedText   `json:"bio"`
	Specialties     []i18n.LocalizedText `json:"specialties"`
	ExperienceYears int                  `json:"experienceYears"`
	Languages       []string             `json:"languages"`
}

// userPatch is the update body; nil fields are left unchanged.
type userPatch struct {
	Email           *string               `json:"email"`
	FirstName       *string               `json:"firstName"`
	LastName        *string               `json:"lastName"`
	Role            *string               `json:"role"`
	Phone           *string               `json:"phone"`
	ProfilePic      *string               `json:"profilePic"`
	Bio             *i18n.LocalizedText   `json:"bio"`
	Specialties     *[]i18n.LocalizedText `json:"specialties"`
	ExperienceYears *int                  `json:"experienceYears"`
	Languages       *[]string             `json:"languages"`
}

func (p userPatch) apply(u *domainUser.User) {
	if p.Email != nil {
		u.Email = domainUser.NormalizeEmail(*p.Email)
	}
	if p.FirstName != nil {
		u.FirstName = strings.TrimSpace(*p.FirstName)
	}
	if p.LastName != nil {
		u.LastName = strings.TrimSpace(*p.LastName)
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Phone != nil {
		u.Phone = strings.TrimSpace(*p.Phone)
	}
	if p.ProfilePic != nil {
		u.ProfilePic = strings.TrimSpace(*p.ProfilePic)
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.Specialties != nil {
		u.Specialties = *p.Specialties
	}
	if p.ExperienceYears != nil {
		u.ExperienceYears = *p.ExperienceYears
	}
	if p.Languages != nil {
		u.Languages = *p.Languages
	}
}

// handleUsers handles GET/POST/PUT/DELETE for /api/users
func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.getUsers(w, r)
	case http.MethodPost:
		s.createUser(w, r)
	case http.MethodPut, http.MethodPatch:
		s.updateUser(w, r)
	case http.MethodDelete:
		s.deleteUser(w, r)
	default:
		methodNotAllowed(w)
	}
}

// loadUser resolves ?id= or ?externalId=.
func (s *Server) loadUser(r *http.Request) (domainUser.User, bool, error) {
	q := r.URL.Query()
	if id := q.Get("id"); id != "" {
		u, err := s.stores.UserStore.GetByID(r.Context(), id)
		return u, true, err
	}
	if ext := q.Get("externalId"); ext != "" {
		u, err := s.stores.UserStore.GetByExternalID(r.Context(), ext)
		return u, true, err
	}
	return domainUser.User{}, false, nil
}

func (s *Server) getUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u, scoped, err := s.loadUser(r)
	if scoped {
		if err != nil {
			lookupFailed(w, r, err)
			return
		}
		// coach profiles are public
		if u.IsCoach() {
			writeJSON(w, http.StatusOK, u)
			return
		}
		if _, ok := authorize(w, r, policy.Resource{Kind: policy.KindUser, OwnerID: u.ID}, policy.ActionRead); !ok {
			return
		}
		writeJSON(w, http.StatusOK, u)
		return
	}

	role := r.URL.Query().Get("role")
	if role != "" && !domainUser.IsValidRole(role) {
		badRequest(w, domainUser.ErrInvalidRole.Error())
		return
	}
	res := policy.Resource{Kind: policy.KindUser, CoachListing: role == domainUser.RoleCoach}
	if _, ok := authorize(w, r, res, policy.ActionList); !ok {
		return
	}
	users, err := s.stores.UserStore.List(ctx, userStore.ListFilter{Role: role})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pageOf(w, r, users))
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := authorize(w, r, policy.Resource{Kind: policy.KindUser}, policy.ActionCreate); !ok {
		return
	}
	var in userInput
	if err := strictDecode(w, r, &in); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	now := s.now().UTC()
	id := s.generateID()
	u := domainUser.User{
		ID:              id,
		ExternalID:      strings.TrimSpace(in.ExternalID),
		Email:           domainUser.NormalizeEmail(in.Email),
		FirstName:       strings.TrimSpace(in.FirstName),
		LastName:        strings.TrimSpace(in.LastName),
		Role:            in.Role,
		Phone:           strings.TrimSpace(in.Phone),
		ProfilePic:      strings.TrimSpace(in.ProfilePic),
		Bio:             in.Bio,
		Specialties:     in.Specialties,
		ExperienceYears: in.ExperienceYears,
		Languages:       in.Languages,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if u.Role == "" {
		u.Role = domainUser.RoleClient
	}
	if u.ExternalID == "" {
		// linked to the provider account with the same email on first sign-in
		u.ExternalID = "invite-" + id
	}
	if err := u.Validate(); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.stores.UserStore.Create(r.Context(), u); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	u, scoped, err := s.loadUser(r)
	if !scoped {
		badRequest(w, "id or externalId is required")
		return
	}
	if err != nil {
		lookupFailed(w, r, err)
		return
	}
	caller, ok := authorize(w, r, policy.Resource{Kind: policy.KindUser, OwnerID: u.ID}, policy.ActionUpdate)
	if !ok {
		return
	}
	var patch userPatch
	if err := strictDecode(w, r, &patch); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	if !caller.IsAdmin() && ((patch.Role != nil && *patch.Role != u.Role) || patch.Email != nil) {
		writeError(w, r, policy.ErrForbidden)
		return
	}
	patch.apply(&u)
	u.UpdatedAt = s.now().UTC()
	if err := u.Validate(); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.stores.UserStore.Update(r.Context(), u); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	u, scoped, err := s.loadUser(r)
	if !scoped {
		badRequest(w, "id or externalId is required")
		return
	}
	if err != nil {
		lookupFailed(w, r, err)
		return
	}
	if _, ok := authorize(w, r, policy.Resource{Kind: policy.KindUser, OwnerID: u.ID}, policy.ActionDelete); !ok {
		return
	}
	if err := s.stores.UserStore.Delete(r.Context(), u.ID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
