package http

import (
	"errors"
	"fmt"
	"net/http"

	"kopimakmur/internal/auth"
	"kopimakmur/internal/core"
	"kopimakmur/internal/services"
	"kopimakmur/internal/storage"
)

type usersView struct {
	Users []core.User
	Roles []core.Role
}

var assignableRoles = []core.Role{core.RoleAdmin, core.RoleGuest, core.RoleViewOnly}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	ctx, cancel := withReadTimeout(r)
	defer cancel()

	users, err := s.deps.Users.List(ctx, p)
	if err != nil {
		s.loadFailed(w, r, p, err)
		return
	}
	s.render(w, r, http.StatusOK, "users.html", pageData{
		Title:  "Kelola User",
		Active: "users",
		User:   p,
		Data:   usersView{Users: users, Roles: assignableRoles},
	})
}

func (s *Server) handleAddUser(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	if err := r.ParseForm(); err != nil {
		s.redirectWithFlash(w, r, flashError, fmt.Sprintf(msgInvalidInput, err), "/users")
		return
	}
	form, err := ParseUserForm(r.PostForm)
	if err != nil {
		s.redirectWithFlash(w, r, flashError, fmt.Sprintf(msgInvalidInput, err), "/users")
		return
	}

	_, err = s.deps.Users.Create(r.Context(), p, form.Username, form.Password, form.Role)
	if errors.Is(err, services.ErrDuplicateUsername) {
		s.redirectWithFlash(w, r, flashError, fmt.Sprintf(msgUserExists, form.Username), "/users")
		return
	}
	if err != nil {
		s.mutationFailed(w, r, p, err, "/users")
		return
	}
	s.redirectWithFlash(w, r, flashSuccess, fmt.Sprintf(msgUserAdded, form.Username), "/users")
}

func (s *Server) handleEditUser(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	if err := r.ParseForm(); err != nil {
		s.redirectWithFlash(w, r, flashError, fmt.Sprintf(msgInvalidInput, err), "/users")
		return
	}
	form, err := ParseUserForm(r.PostForm)
	if err != nil || form.ID == 0 {
		s.redirectWithFlash(w, r, flashError, msgUserNotFound, "/users")
		return
	}

	err = s.deps.Users.Update(r.Context(), p, form.ID, form.Username, form.Password, form.Role)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.redirectWithFlash(w, r, flashError, msgUserNotFound, "/users")
	case errors.Is(err, services.ErrDuplicateUsername):
		s.redirectWithFlash(w, r, flashError, fmt.Sprintf(msgUserExists, form.Username), "/users")
	case err != nil:
		s.mutationFailed(w, r, p, err, "/users")
	default:
		s.redirectWithFlash(w, r, flashSuccess, msgUserUpdated, "/users")
	}
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	id, err := parsePathID(r)
	if err != nil {
		FailureResponse(http.StatusNotFound, msgUserNotFound).Write(w)
		return
	}
	err = s.deps.Users.Delete(r.Context(), p, id)
	s.writeDeleteResult(w, r, err, msgUserNotFound)
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	ctx, cancel := withReadTimeout(r)
	defer cancel()

	products, err := s.deps.Products.List(ctx, p)
	if err != nil {
		s.loadFailed(w, r, p, err)
		return
	}
	s.render(w, r, http.StatusOK, "products.html", pageData{
		Title:  "Kelola Produk",
		Active: "products",
		User:   p,
		Data:   products,
	})
}

func (s *Server) handleAddProduct(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	if err := r.ParseForm(); err != nil {
		s.redirectWithFlash(w, r, flashError, fmt.Sprintf(msgInvalidInput, err), "/products")
		return
	}
	prod, err := ParseProductForm(r.PostForm)
	if err != nil {
		s.redirectWithFlash(w, r, flashError, fmt.Sprintf(msgInvalidInput, err), "/products")
		return
	}
	prod.ID = 0

	created, err := s.deps.Products.Create(r.Context(), p, prod)
	if err != nil {
		s.mutationFailed(w, r, p, err, "/products")
		return
	}
	s.redirectWithFlash(w, r, flashSuccess, fmt.Sprintf(msgProductAdded, created.Name), "/products")
}

func (s *Server) handleEditProduct(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	if err := r.ParseForm(); err != nil {
		s.redirectWithFlash(w, r, flashError, fmt.Sprintf(msgInvalidInput, err), "/products")
		return
	}
	prod, err := ParseProductForm(r.PostForm)
	if errors.Is(err, errInvalidID) {
		s.redirectWithFlash(w, r, flashError, msgProductNotFound, "/products")
		return
	}
	if err != nil {
		s.redirectWithFlash(w, r, flashError, fmt.Sprintf(msgInvalidInput, err), "/products")
		return
	}
	if prod.ID == 0 {
		s.redirectWithFlash(w, r, flashError, msgProductNotFound, "/products")
		return
	}

	err = s.deps.Products.Update(r.Context(), p, prod)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.redirectWithFlash(w, r, flashError, msgProductNotFound, "/products")
	case err != nil:
		s.mutationFailed(w, r, p, err, "/products")
	default:
		s.redirectWithFlash(w, r, flashSuccess, msgProductUpdated, "/products")
	}
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	id, err := parsePathID(r)
	if err != nil {
		FailureResponse(http.StatusNotFound, msgProductNotFound).Write(w)
		return
	}
	err = s.deps.Products.Delete(r.Context(), p, id)
	s.writeDeleteResult(w, r, err, msgProductNotFound)
}
