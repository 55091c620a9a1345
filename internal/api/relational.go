package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/AI2HU/bookapp/internal/models"
)

// Relational book endpoints

// bindBookItem binds and validates a BookItem body. On failure the
// request has already been answered with a 422.
func (s *Server) bindBookItem(c *gin.Context) (models.BookItem, bool) {
	var req models.BookItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorResponse(c, http.StatusUnprocessableEntity, "Invalid request: "+err.Error())
		return models.BookItem{}, false
	}
	return req.Item(), true
}

// bookID parses the integer id path parameter
func (s *Server) bookID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		s.errorResponse(c, http.StatusUnprocessableEntity, "Invalid id: must be an integer")
		return 0, false
	}
	return id, true
}

// createBook handles POST /book_app
func (s *Server) createBook(c *gin.Context) {
	item, ok := s.bindBookItem(c)
	if !ok {
		return
	}

	book, err := s.bookService.CreateBook(c.Request.Context(), item)
	if err != nil {
		s.storeError(c, err, "create book")
		return
	}

	s.successResponse(c, book)
}

// getBook handles GET /book_app/:id
func (s *Server) getBook(c *gin.Context) {
	id, ok := s.bookID(c)
	if !ok {
		return
	}

	book, err := s.bookService.GetBook(c.Request.Context(), id)
	if err != nil {
		s.storeError(c, err, "get book")
		return
	}

	s.successResponse(c, book)
}

// updateBook handles PUT /book_app/:id
func (s *Server) updateBook(c *gin.Context) {
	id, ok := s.bookID(c)
	if !ok {
		return
	}
	item, ok := s.bindBookItem(c)
	if !ok {
		return
	}

	if err := s.bookService.UpdateBook(c.Request.Context(), id, item); err != nil {
		s.storeError(c, err, "update book")
		return
	}

	s.successResponse(c, models.MessageResponse{Message: "Item updated"})
}

// deleteBook handles DELETE /book_app/:id
func (s *Server) deleteBook(c *gin.Context) {
	id, ok := s.bookID(c)
	if !ok {
		return
	}

	if err := s.bookService.DeleteBook(c.Request.Context(), id); err != nil {
		s.storeError(c, err, "delete book")
		return
	}

	s.successResponse(c, models.MessageResponse{Message: "Item deleted"})
}
