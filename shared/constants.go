package shared

const (
	RELATION_FAVORITE  = "favorite"
	RELATION_WATCHLIST = "watchlist"

	KIND_MEDIA  = "media"
	KIND_PERSON = "person"

	THEME_LIGHT = "light"
	THEME_DARK  = "dark"

	USER_AGENT = "WhatToWatch/2.0 <github.com/VietCH57/What-to-watch>"
)
