package http

import (
	"context"
	"errors"
	"html/template"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/shelf/internal/inventory"
)

// MaxRating is the highest rating the page and the API offer.
const MaxRating = 5

// InventoryService is the controller surface the handlers drive.
type InventoryService interface {
	Add(ctx context.Context, raw string) error
	Rate(ctx context.Context, id string, rating int) error
	Delete(ctx context.Context, id string) error
	Refresh(ctx context.Context) int
	Error() string
	Books() []inventory.Book
	InFlight() int
}

type BooksController struct {
	inventory InventoryService
}

func NewBooksController(inv InventoryService) *BooksController {
	return &BooksController{
		inventory: inv,
	}
}

type indexPage struct {
	Books     []inventory.Book
	Error     string
	Fetching  bool
	CSRFField template.HTML
}

// Index renders the inventory page.
func (controller *BooksController) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index", indexPage{
		Books:     controller.inventory.Books(),
		Error:     controller.inventory.Error(),
		Fetching:  controller.inventory.InFlight() > 0,
		CSRFField: CSRFTokenField(c),
	})
}

// AddForm handles the add form. Invalid input is reported through the
// error banner on the page it redirects to.
func (controller *BooksController) AddForm(c *gin.Context) {
	err := controller.inventory.Add(c.Request.Context(), c.PostForm("isbn"))
	if err != nil && !errors.Is(err, inventory.ErrInvalidISBN) {
		log.Printf("[HTTP] %s add failed: %v", RequestID(c), err)
		c.String(http.StatusInternalServerError, "Failed to save inventory")
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (controller *BooksController) RateForm(c *gin.Context) {
	rating, err := strconv.Atoi(c.PostForm("rating"))
	if err != nil || rating < 0 || rating > MaxRating {
		c.String(http.StatusBadRequest, "Rating must be between 0 and 5")
		return
	}

	if err := controller.inventory.Rate(c.Request.Context(), c.Param("isbn"), rating); err != nil {
		log.Printf("[HTTP] %s rate failed: %v", RequestID(c), err)
		c.String(http.StatusInternalServerError, "Failed to save inventory")
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (controller *BooksController) DeleteForm(c *gin.Context) {
	if err := controller.inventory.Delete(c.Request.Context(), c.Param("isbn")); err != nil {
		log.Printf("[HTTP] %s delete failed: %v", RequestID(c), err)
		c.String(http.StatusInternalServerError, "Failed to save inventory")
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (controller *BooksController) GetAllBooks(c *gin.Context) {
	books := controller.inventory.Books()
	c.IndentedJSON(http.StatusOK, gin.H{
		"books":     books,
		"count":     len(books),
		"error":     controller.inventory.Error(),
		"in_flight": controller.inventory.InFlight(),
	})
}

type addBookRequest struct {
	ISBN string `json:"isbn" binding:"required"`
}

func (controller *BooksController) AddBook(c *gin.Context) {
	var req addBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"error": "isbn is required"})
		return
	}

	err := controller.inventory.Add(c.Request.Context(), req.ISBN)
	switch {
	case errors.Is(err, inventory.ErrInvalidISBN):
		c.IndentedJSON(http.StatusBadRequest, gin.H{"error": inventory.InvalidISBNMessage})
		return
	case err != nil:
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.IndentedJSON(http.StatusAccepted, gin.H{"books": controller.inventory.Books()})
}

type rateBookRequest struct {
	Rating *int `json:"rating" binding:"required,min=0,max=5"`
}

func (controller *BooksController) RateBook(c *gin.Context) {
	var req rateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"error": "rating must be between 0 and 5"})
		return
	}

	if err := controller.inventory.Rate(c.Request.Context(), c.Param("isbn"), *req.Rating); err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.IndentedJSON(http.StatusOK, gin.H{"isbn": c.Param("isbn"), "rating": *req.Rating})
}

func (controller *BooksController) DeleteBook(c *gin.Context) {
	if err := controller.inventory.Delete(c.Request.Context(), c.Param("isbn")); err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// RefreshBooks starts a fetch pass over the tracked identifiers.
func (controller *BooksController) RefreshBooks(c *gin.Context) {
	started := controller.inventory.Refresh(c.Request.Context())
	c.IndentedJSON(http.StatusAccepted, gin.H{"started": started})
}
