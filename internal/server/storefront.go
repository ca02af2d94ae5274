package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	moviedomain "github.com/smallbiznis/movieshop/internal/movie/domain"
)

type movieDetailResponse struct {
	Movie *moviedomain.Response `json:"movie"`
	Owned bool                  `json:"owned"`
}

// Home is the customer's library with spending and watch totals.
func (s *Server) Home(c *gin.Context) {
	profile, ok := profileFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	resp, err := s.purchaseSvc.Library(c.Request.Context(), profile.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListMovies(c *gin.Context) {
	profile, ok := profileFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	resp, err := s.purchaseSvc.ListMoviesWithWatchStatus(c.Request.Context(), profile.ID, strings.TrimSpace(c.Query("genre_id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListMoviesByGenre(c *gin.Context) {
	profile, ok := profileFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	genreID := strings.TrimSpace(c.Param("id"))
	if genreID == "" {
		AbortWithError(c, ErrNotFound)
		return
	}

	resp, err := s.purchaseSvc.ListMoviesWithWatchStatus(c.Request.Context(), profile.ID, genreID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetMovie(c *gin.Context) {
	profile, ok := profileFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	movie, err := s.movieSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	owned, err := s.purchaseSvc.IsEntitled(c.Request.Context(), profile.ID, movie.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": movieDetailResponse{Movie: movie, Owned: owned}})
}

func (s *Server) QuoteMovie(c *gin.Context) {
	profile, ok := profileFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	resp, err := s.purchaseSvc.Quote(c.Request.Context(), profile.ID, c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// PayMovie answers 201 for a new entitlement and 200 when the movie was already owned.
func (s *Server) PayMovie(c *gin.Context) {
	profile, ok := profileFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	resp, err := s.purchaseSvc.Purchase(c.Request.Context(), profile.ID, c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	status := http.StatusCreated
	if resp.AlreadyOwned {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"data": resp})
}

func (s *Server) WatchMovie(c *gin.Context) {
	profile, ok := profileFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	resp, err := s.purchaseSvc.Watch(c.Request.Context(), profile.ID, c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
