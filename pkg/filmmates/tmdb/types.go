package tmdb

// Movie is one catalog result. Fields the catalog sends as null or omits
// are nil and dropped from JSON.
type Movie struct {
	ID            int64    `json:"id"`
	Title         string   `json:"title"`
	OriginalTitle *string  `json:"original_title,omitempty"`
	Overview      *string  `json:"overview,omitempty"`
	PosterPath    *string  `json:"poster_path,omitempty"`
	BackdropPath  *string  `json:"backdrop_path,omitempty"`
	ReleaseDate   *string  `json:"release_date,omitempty"`
	VoteAverage   *float64 `json:"vote_average,omitempty"`
	GenreIDs      []int    `json:"genre_ids,omitempty"`
}

// Page is one page of catalog results.
type Page struct {
	Results      []Movie `json:"results"`
	Page         int     `json:"page"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// pageResponse mirrors the wire format. Pointer fields absorb JSON null.
type pageResponse struct {
	Page         int           `json:"page"`
	Results      []movieResult `json:"results"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
}

type movieResult struct {
	ID            int64    `json:"id"`
	Title         string   `json:"title"`
	OriginalTitle *string  `json:"original_title"`
	Overview      *string  `json:"overview"`
	PosterPath    *string  `json:"poster_path"`
	BackdropPath  *string  `json:"backdrop_path"`
	ReleaseDate   *string  `json:"release_date"`
	VoteAverage   *float64 `json:"vote_average"`
	GenreIDs      []int    `json:"genre_ids"`
}

func (r movieResult) toMovie() Movie {
	m := Movie{
		ID:            r.ID,
		Title:         r.Title,
		OriginalTitle: r.OriginalTitle,
		Overview:      r.Overview,
		PosterPath:    r.PosterPath,
		BackdropPath:  r.BackdropPath,
		ReleaseDate:   r.ReleaseDate,
		VoteAverage:   r.VoteAverage,
	}
	if len(r.GenreIDs) > 0 {
		m.GenreIDs = r.GenreIDs
	}
	return m
}
