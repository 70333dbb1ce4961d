package handler

import (
	"time"

	"github.com/rezkam/todoreminder/internal/application/user"
	"github.com/rezkam/todoreminder/internal/domain"
)

// TodoDTO is the wire representation of a todo.
type TodoDTO struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Status      string     `json:"status"`
	RemindAt    *time.Time `json:"remindAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TodoPageDTO is one page of todos. Count is the total across all pages.
type TodoPageDTO struct {
	Data  []TodoDTO `json:"data"`
	Count int       `json:"count"`
	Page  int       `json:"page"`
}

// UserDTO is the wire representation of a user. The password hash is never exposed.
type UserDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// LoginDTO is returned by a successful login or refresh.
type LoginDTO struct {
	AccessToken  string  `json:"accessToken"`
	RefreshToken string  `json:"refreshToken"`
	TokenType    string  `json:"tokenType"`
	User         UserDTO `json:"user"`
}

// MapTodoToDTO converts a domain todo. Times are rendered in UTC.
func MapTodoToDTO(t *domain.Todo) TodoDTO {
	dto := TodoDTO{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
	}
	if t.RemindAt != nil {
		r := t.RemindAt.UTC()
		dto.RemindAt = &r
	}
	return dto
}

// MapTodoPageToDTO converts a repository page. Data is never null on the wire.
func MapTodoPageToDTO(p *domain.TodoPage, page int) TodoPageDTO {
	data := make([]TodoDTO, 0, len(p.Data))
	for _, t := range p.Data {
		data = append(data, MapTodoToDTO(t))
	}
	return TodoPageDTO{Data: data, Count: p.Count, Page: page}
}

// MapUsersToDTO converts a user listing; the result is never nil.
func MapUsersToDTO(users []*domain.User) []UserDTO {
	out := make([]UserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, MapUserToDTO(u))
	}
	return out
}

// MapSessionToDTO converts a login session into the token response.
func MapSessionToDTO(s *user.Session) LoginDTO {
	return LoginDTO{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    "Bearer",
		User:         MapUserToDTO(s.User),
	}
}

// MapUserToDTO converts a domain user.
func MapUserToDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.UTC(),
	}
}
