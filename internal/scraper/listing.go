package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"medical-news-scraper/internal/normalize"
	"medical-news-scraper/internal/source"
)

// defaultMaxPages ограничение пагинации, если в источнике не задано своё
const defaultMaxPages = 5

var (
	listingFallback = source.SelectorList{".post", "article", ".news-item", ".article-item"}
	listingTitle    = source.SelectorList{"h1, h2, .title, a"}
	listingSummary  = source.SelectorList{"p, .content, .text"}
	listingAnyLink  = source.SelectorList{"a[href]"}
	listingDate     = source.SelectorList{"time[datetime]", "time, .date, .post-date, .news-date"}
)

// ScrapeListing собирает карточки статей со страницы-листинга источника,
// при наличии пагинации проходит по следующим страницам.
func (s *Scraper) ScrapeListing(ctx context.Context, src source.Descriptor) ([]ListingItem, error) {
	logger := s.logger.With("source", src.Name)

	maxPages := 1
	if src.Pagination != nil {
		maxPages = src.Pagination.MaxPages
		if maxPages == 0 {
			maxPages = defaultMaxPages
		}
	}

	var items []ListingItem
	visited := make(map[string]struct{})
	pageURL := src.URL

	for page := 1; page <= maxPages && pageURL != ""; page++ {
		if _, seen := visited[pageURL]; seen {
			logger.Warn("pagination loop detected", "url", pageURL)
			break
		}
		visited[pageURL] = struct{}{}

		doc, base, err := s.loadDocument(ctx, src, pageURL)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			// Уже собранное не выбрасываем
			logger.Warn("pagination stopped", "page", page, "url", pageURL, "error", err)
			break
		}

		pageItems := s.parseListing(doc, src, base, page)
		logger.Info("listing page parsed", "page", page, "url", pageURL, "items", len(pageItems))
		items = append(items, pageItems...)

		if src.Pagination == nil {
			break
		}
		pageURL = s.nextPage(doc, base, src.Pagination.NextSelectors)
	}

	return items, nil
}

func (s *Scraper) loadDocument(ctx context.Context, src source.Descriptor, target string) (*goquery.Document, *url.URL, error) {
	page, err := s.fetcher.Fetch(ctx, src, target)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to parse HTML: %w", ErrIncompleteExtraction, err)
	}
	normalize.StripNoise(doc)

	base := page.URL
	if base == nil {
		if base, err = url.Parse(target); err != nil {
			return nil, nil, fmt.Errorf("invalid URL: %w", err)
		}
	}
	return doc, base, nil
}

// parseListing карточки первого сработавшего селектора статьи
func (s *Scraper) parseListing(doc *goquery.Document, src source.Descriptor, base *url.URL, page int) []ListingItem {
	candidates := make(source.SelectorList, 0, len(src.Selectors[source.FieldArticle])+len(listingFallback))
	candidates = append(candidates, src.Selectors[source.FieldArticle]...)
	candidates = append(candidates, listingFallback...)

	loc := src.Location()
	var items []ListingItem
	for _, sel := range candidates {
		matcher, err := s.extractor.compile(source.FieldArticle, sel)
		if err != nil {
			continue
		}
		cards := doc.FindMatcher(matcher)
		if cards.Length() == 0 {
			continue
		}

		cards.Each(func(_ int, card *goquery.Selection) {
			title := s.extractor.firstMatch(card, source.FieldTitle, listingTitle)
			summary := s.extractor.firstMatch(card, source.FieldContent, listingSummary)
			if title == nil || summary == nil {
				return
			}
			item := ListingItem{
				Title:      normalize.SelectionText(title),
				Summary:    normalize.SelectionText(summary),
				SourceName: src.Name,
				PageURL:    base.String(),
				Page:       page,
			}
			if item.Title == "" || item.Summary == "" {
				return
			}
			item.Link = s.cardLink(card, src, base)
			item.Published = s.cardDate(card, src, loc)
			items = append(items, item)
		})
		// Нашли карточки по одному из селекторов, остальные не смотрим
		break
	}
	return items
}

func (s *Scraper) cardLink(card *goquery.Selection, src source.Descriptor, base *url.URL) string {
	for _, list := range []source.SelectorList{src.Selectors[source.FieldLink], listingAnyLink} {
		link := s.extractor.firstMatch(card, source.FieldLink, list)
		if link == nil {
			continue
		}
		if href, ok := link.Attr("href"); ok {
			if resolved := normalize.ResolveURL(base, href); resolved != "" {
				return resolved
			}
		}
	}
	// Карточка сама может быть ссылкой
	if href, ok := card.Attr("href"); ok {
		return normalize.ResolveURL(base, href)
	}
	return ""
}

// cardDate дата публикации карточки; нераспознанная дата не мешает карточке
func (s *Scraper) cardDate(card *goquery.Selection, src source.Descriptor, loc *time.Location) *time.Time {
	for _, list := range []source.SelectorList{src.Selectors[source.FieldDate], listingDate} {
		node := s.extractor.firstMatch(card, source.FieldDate, list)
		if node == nil {
			continue
		}
		raw, ok := node.Attr("datetime")
		if !ok || raw == "" {
			raw = normalize.SelectionText(node)
		}
		if t, err := s.dates.Parse(raw, loc); err == nil {
			return &t
		}
	}
	return nil
}

// nextPage ссылка на следующую страницу или пустая строка
func (s *Scraper) nextPage(doc *goquery.Document, base *url.URL, selectors source.SelectorList) string {
	for _, sel := range selectors {
		matcher, err := s.extractor.compile(source.FieldLink, sel)
		if err != nil {
			continue
		}
		href, exists := doc.FindMatcher(matcher).First().Attr("href")
		if exists && href != "" {
			if resolved := normalize.ResolveURL(base, href); resolved != "" {
				return resolved
			}
		}
	}
	return ""
}
