// Package ui builds inline query results.
package ui

import tele "gopkg.in/telebot.v4"

// ArticleResult creates an inline article with HTML message content.
func ArticleResult(id, title, description, text string) *tele.ArticleResult {
	result := &tele.ArticleResult{
		Title:       title,
		Description: description,
		Text:        text,
	}
	result.SetResultID(id)
	result.SetParseMode(tele.ModeHTML)
	return result
}

// Results converts articles into a query response list.
func Results(articles ...*tele.ArticleResult) tele.Results {
	out := make(tele.Results, 0, len(articles))
	for _, a := range articles {
		out = append(out, a)
	}
	return out
}
