package rss

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Source is one configured feed. Name is what readers see, not a domain.
type Source struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Homepage string `yaml:"homepage,omitempty"`
}

// FeedsConfig is YAML config structure
// feeds:
//   - name: BBC World
//     url: http://feeds.bbci.co.uk/news/world/rss.xml
//     homepage: https://www.bbc.com/news
type FeedsConfig struct {
	Feeds []Source `yaml:"feeds"`
}

// LoadSources reads the feed source list from a YAML file.
func LoadSources(path string) ([]Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg FeedsConfig
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode feeds config %s: %w", path, err)
	}

	out := make([]Source, 0, len(cfg.Feeds))
	for _, s := range cfg.Feeds {
		if s.URL == "" {
			continue
		}
		if s.Name == "" {
			s.Name = s.URL
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no feeds configured in %s", path)
	}
	return out, nil
}

// DefaultSources is used when no feeds file is configured.
var DefaultSources = []Source{
	{Name: "BBC World", URL: "http://feeds.bbci.co.uk/news/world/rss.xml", Homepage: "https://www.bbc.com/news"},
	{Name: "Reuters Top News", URL: "http://feeds.reuters.com/reuters/topNews", Homepage: "https://www.reuters.com"},
	{Name: "The Verge", URL: "https://www.theverge.com/rss/index.xml", Homepage: "https://www.theverge.com"},
	{Name: "Hacker News", URL: "https://hnrss.org/frontpage", Homepage: "https://news.ycombinator.com"},
	{Name: "NYTimes Home", URL: "https://rss.nytimes.com/services/xml/rss/nyt/HomePage.xml", Homepage: "https://www.nytimes.com"},
	{Name: "NYTimes World", URL: "https://rss.nytimes.com/services/xml/rss/nyt/World.xml", Homepage: "https://www.nytimes.com/section/world"},
	{Name: "The Guardian World", URL: "https://www.theguardian.com/world/rss", Homepage: "https://www.theguardian.com/world"},
	{Name: "The Guardian Technology", URL: "https://www.theguardian.com/technology/rss", Homepage: "https://www.theguardian.com/technology"},
	{Name: "Al Jazeera", URL: "https://www.aljazeera.com/xml/rss/all.xml", Homepage: "https://www.aljazeera.com"},
	{Name: "CNN Top", URL: "http://rss.cnn.com/rss/cnn_topstories.rss", Homepage: "https://www.cnn.com"},
	{Name: "Fox News Latest", URL: "http://feeds.foxnews.com/foxnews/latest", Homepage: "https://www.foxnews.com"},
	{Name: "NPR News", URL: "https://www.npr.org/rss/rss.php?id=1001", Homepage: "https://www.npr.org"},
	{Name: "Economist Latest", URL: "https://www.economist.com/latest/rss.xml", Homepage: "https://www.economist.com"},
	{Name: "WSJ World", URL: "https://feeds.a.dj.com/rss/RSSWorldNews.xml", Homepage: "https://www.wsj.com"},
	{Name: "Financial Times World", URL: "http://feeds.feedburner.com/ft/world", Homepage: "https://www.ft.com/world"},
	{Name: "CNBC Top", URL: "https://www.cnbc.com/id/100003114/device/rss/rss.html", Homepage: "https://www.cnbc.com"},
	{Name: "Ars Technica", URL: "http://feeds.arstechnica.com/arstechnica/index/", Homepage: "https://arstechnica.com"},
	{Name: "Wired", URL: "https://www.wired.com/feed/rss", Homepage: "https://www.wired.com"},
	{Name: "Engadget", URL: "https://www.engadget.com/rss.xml", Homepage: "https://www.engadget.com"},
	{Name: "TechCrunch", URL: "http://feeds.feedburner.com/TechCrunch/", Homepage: "https://techcrunch.com"},
	{Name: "Gizmodo", URL: "https://gizmodo.com/rss", Homepage: "https://gizmodo.com"},
	{Name: "BleepingComputer", URL: "https://www.bleepingcomputer.com/feed/", Homepage: "https://www.bleepingcomputer.com"},
	{Name: "The Verge Circuit Breaker", URL: "https://www.theverge.com/circuitbreaker/rss/index.xml", Homepage: "https://www.theverge.com/circuitbreaker"},
	{Name: "Reddit r/worldnews", URL: "https://www.reddit.com/r/worldnews/.rss", Homepage: "https://www.reddit.com/r/worldnews"},
}
