package api

import (
	"github.com/gin-gonic/gin"

	"github.com/AI2HU/bookapp/internal/models"
)

// Document book endpoints. Ids are the store's ObjectID in hex; other
// strings are looked up verbatim.

// createBookDocument handles POST /book_app/mongodb
func (s *Server) createBookDocument(c *gin.Context) {
	item, ok := s.bindBookItem(c)
	if !ok {
		return
	}

	doc, err := s.bookService.CreateBookDocument(c.Request.Context(), item)
	if err != nil {
		s.storeError(c, err, "create book document")
		return
	}

	s.successResponse(c, doc)
}

// getBookDocument handles GET /book_app/mongodb/:id
func (s *Server) getBookDocument(c *gin.Context) {
	doc, err := s.bookService.GetBookDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.storeError(c, err, "get book document")
		return
	}

	s.successResponse(c, doc)
}

// updateBookDocument handles PUT /book_app/mongodb/:id
func (s *Server) updateBookDocument(c *gin.Context) {
	item, ok := s.bindBookItem(c)
	if !ok {
		return
	}

	if err := s.bookService.UpdateBookDocument(c.Request.Context(), c.Param("id"), item); err != nil {
		s.storeError(c, err, "update book document")
		return
	}

	s.successResponse(c, models.MessageResponse{Message: "Item updated"})
}

// deleteBookDocument handles DELETE /book_app/mongodb/:id
func (s *Server) deleteBookDocument(c *gin.Context) {
	if err := s.bookService.DeleteBookDocument(c.Request.Context(), c.Param("id")); err != nil {
		s.storeError(c, err, "delete book document")
		return
	}

	s.successResponse(c, models.MessageResponse{Message: "Item deleted"})
}
