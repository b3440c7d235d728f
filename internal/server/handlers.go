package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/blackwell-systems/shelfread/internal/acquire"
	"github.com/blackwell-systems/shelfread/internal/catalog"
	"github.com/blackwell-systems/shelfread/internal/reader"
)

const bookKey contextKey = "book"

const maxBodyBytes = 64 << 10

type positionResponse struct {
	BookID string `json:"bookId"`
	Page   int    `json:"page"`
}

type positionRequest struct {
	Page int `json:"page"`
}

type viewerResponse struct {
	BookID string `json:"bookId"`
	URL    string `json:"url"`
}

func (s *Server) bookCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		b := catalog.ByID(s.books, id)
		if b == nil {
			jsonError(w, r, http.StatusNotFound, "book_not_found", "No book with id "+strconv.Quote(id))
			return
		}
		ctx := context.WithValue(r.Context(), bookKey, *b)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bookFrom(r *http.Request) catalog.Book {
	b, _ := r.Context().Value(bookKey).(catalog.Book)
	return b
}

func (s *Server) listBooks(w http.ResponseWriter, r *http.Request) {
	books := catalog.Search(s.books, r.URL.Query().Get("q"))
	jsonList(w, r, books, len(books))
}

func (s *Server) getBook(w http.ResponseWriter, r *http.Request) {
	jsonSuccess(w, r, http.StatusOK, bookFrom(r))
}

func (s *Server) getPosition(w http.ResponseWriter, r *http.Request) {
	b := bookFrom(r)
	if err := s.writer.Settled(r.Context(), b.ID); err != nil {
		s.persistenceFailed(w, r, err)
		return
	}
	page, ok, err := reader.LoadPosition(r.Context(), s.writer.Store(), b.ID)
	if err != nil {
		s.persistenceFailed(w, r, err)
		return
	}
	if !ok {
		page = 1
	}
	jsonSuccess(w, r, http.StatusOK, positionResponse{BookID: b.ID, Page: page})
}

func (s *Server) putPosition(w http.ResponseWriter, r *http.Request) {
	b := bookFrom(r)
	var req positionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Page < 1 {
		jsonError(w, r, http.StatusBadRequest, "invalid_page", "Page numbers start at 1")
		return
	}
	if err := s.await(r.Context(), s.writer.Set(b.ID, reader.PositionKey(b.ID), strconv.Itoa(req.Page))); err != nil {
		s.persistenceFailed(w, r, err)
		return
	}
	jsonSuccess(w, r, http.StatusOK, positionResponse{BookID: b.ID, Page: req.Page})
}

func (s *Server) listBookmarks(w http.ResponseWriter, r *http.Request) {
	b := bookFrom(r)
	if err := s.writer.Settled(r.Context(), b.ID); err != nil {
		s.persistenceFailed(w, r, err)
		return
	}
	list, err := reader.LoadBookmarks(r.Context(), s.writer.Store(), b.ID)
	if err != nil {
		s.persistenceFailed(w, r, err)
		return
	}
	jsonList(w, r, list, len(list))
}

func (s *Server) addBookmark(w http.ResponseWriter, r *http.Request) {
	b := bookFrom(r)
	var req reader.Bookmark
	if !decodeBody(w, r, &req) {
		return
	}
	req.Note = strings.TrimSpace(req.Note)
	if req.Note == "" {
		jsonError(w, r, http.StatusBadRequest, "note_required", "Please enter a note for the bookmark")
		return
	}
	if req.Page < 1 {
		jsonError(w, r, http.StatusBadRequest, "invalid_page", "Page numbers start at 1")
		return
	}

	list, ok := s.updateBookmarks(w, r, b.ID, func(list []reader.Bookmark) ([]reader.Bookmark, bool) {
		return append(list, req), true
	})
	if !ok {
		return
	}
	jsonSuccess(w, r, http.StatusCreated, list)
}

func (s *Server) deleteBookmark(w http.ResponseWriter, r *http.Request) {
	b := bookFrom(r)
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		jsonError(w, r, http.StatusBadRequest, "invalid_index", "Bookmark index must be an integer")
		return
	}

	_, ok := s.updateBookmarks(w, r, b.ID, func(list []reader.Bookmark) ([]reader.Bookmark, bool) {
		if index < 0 || index >= len(list) {
			jsonError(w, r, http.StatusNotFound, "bookmark_not_found", "No bookmark at index "+strconv.Itoa(index))
			return nil, false
		}
		out := make([]reader.Bookmark, 0, len(list)-1)
		out = append(out, list[:index]...)
		return append(out, list[index+1:]...), true
	})
	if !ok {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// updateBookmarks applies fn to the stored list under the book's lock and
// writes the result. fn writes its own error response when it declines.
func (s *Server) updateBookmarks(w http.ResponseWriter, r *http.Request, bookID string,
	fn func([]reader.Bookmark) ([]reader.Bookmark, bool)) ([]reader.Bookmark, bool) {
	mu := s.bookLock(bookID)
	mu.Lock()
	defer mu.Unlock()

	if err := s.writer.Settled(r.Context(), bookID); err != nil {
		s.persistenceFailed(w, r, err)
		return nil, false
	}
	list, err := reader.LoadBookmarks(r.Context(), s.writer.Store(), bookID)
	if err != nil {
		s.persistenceFailed(w, r, err)
		return nil, false
	}
	list, ok := fn(list)
	if !ok {
		return nil, false
	}
	enc, err := reader.EncodeBookmarks(list)
	if err != nil {
		s.persistenceFailed(w, r, err)
		return nil, false
	}
	if err := s.await(r.Context(), s.writer.Set(bookID, reader.BookmarksKey(bookID), enc)); err != nil {
		s.persistenceFailed(w, r, err)
		return nil, false
	}
	return list, true
}

func (s *Server) viewer(w http.ResponseWriter, r *http.Request) {
	b := bookFrom(r)
	u, err := acquire.ViewerURL(s.endpoint, b.URL)
	if err != nil {
		if errors.Is(err, acquire.ErrNoContentURL) {
			jsonError(w, r, http.StatusNotFound, "no_content", "Book has no content URL")
			return
		}
		jsonError(w, r, http.StatusInternalServerError, "viewer_unavailable", err.Error())
		return
	}
	jsonSuccess(w, r, http.StatusOK, viewerResponse{BookID: b.ID, URL: u})
}

func (s *Server) await(ctx context.Context, result <-chan error) error {
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) persistenceFailed(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Warn("reading state unavailable", "request_id", RequestIDFrom(r), "err", err)
	jsonError(w, r, http.StatusServiceUnavailable, "store_unavailable", "Reading state is temporarily unavailable")
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		jsonError(w, r, http.StatusBadRequest, "invalid_json", "Request body is not valid JSON: "+err.Error())
		return false
	}
	return true
}
