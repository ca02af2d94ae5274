package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	moviedomain "github.com/smallbiznis/movieshop/internal/movie/domain"
)

func (s *Server) AdminListMovies(c *gin.Context) {
	if title := strings.TrimSpace(c.Query("title")); title != "" {
		resp, err := s.movieSvc.GetByTitle(c.Request.Context(), title)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": []moviedomain.Response{*resp}})
		return
	}

	resp, err := s.movieSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateMovie(c *gin.Context) {
	var req moviedomain.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.movieSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) AdminGetMovie(c *gin.Context) {
	resp, err := s.movieSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateMovie(c *gin.Context) {
	var req moviedomain.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.movieSvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteMovie(c *gin.Context) {
	if err := s.movieSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) AddGenreToMovie(c *gin.Context) {
	ctx := c.Request.Context()
	movieID := c.Param("id")
	if err := s.movieGenreSvc.AddGenreToMovie(ctx, movieID, c.Param("genreId")); err != nil {
		AbortWithError(c, err)
		return
	}

	genres, err := s.movieGenreSvc.ListGenresForMovie(ctx, movieID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": genres})
}

func (s *Server) RemoveGenreFromMovie(c *gin.Context) {
	ctx := c.Request.Context()
	movieID := c.Param("id")
	if err := s.movieGenreSvc.RemoveGenreFromMovie(ctx, movieID, c.Param("genreId")); err != nil {
		AbortWithError(c, err)
		return
	}

	genres, err := s.movieGenreSvc.ListGenresForMovie(ctx, movieID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": genres})
}
