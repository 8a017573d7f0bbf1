package cache

import (
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var indexTemplate = template.Must(template.New("index").Parse(`<html>
<head>
<title>MCP - cache{{if .Title}} - {{.Title}}{{end}}</title>
</head>
<body>
<h1>MCP cached files from requests{{if .Title}} - {{.Title}}{{end}}</h1>
{{range .Entries}}<p>
<a href="{{.URL}}">{{.Name}}</a>
{{if .IsFile}}<a href="{{.URL}}" download>Download ({{.SizeKB}} KB)</a>{{end}}
</p>
{{end}}</body>
</html>
`))

type indexEntry struct {
	Name   string
	URL    string
	IsFile bool
	SizeKB string
}

type indexPage struct {
	Title   string
	Entries []indexEntry
}

// Browser serves the cache directory over HTTP: directories as an HTML
// index, files as JSON.
type Browser struct {
	root   string
	prefix string
	logger *zap.Logger
}

// NewBrowser creates a browser for root, mounted at prefix (e.g. /cache)
func NewBrowser(root, prefix string, logger *zap.Logger) *Browser {
	return &Browser{
		root:   root,
		prefix: strings.TrimSuffix(prefix, "/"),
		logger: logger,
	}
}

// Handle serves one request; the route must capture the relative path as "path"
func (b *Browser) Handle(c *gin.Context) {
	// Clean against "/" so ".." can never climb above the root
	rel := path.Clean("/" + c.Param("path"))
	full := filepath.Join(b.root, filepath.FromSlash(rel))

	info, err := os.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		b.logger.Error("Failed to stat cache path", zap.String("path", full), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read cache"})
		return
	}

	if !info.IsDir() {
		c.Header("Content-Type", "application/json")
		c.File(full)
		return
	}

	page, err := b.index(full, rel)
	if err != nil {
		b.logger.Error("Failed to list cache directory", zap.String("path", full), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read cache"})
		return
	}

	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(c.Writer, page); err != nil {
		b.logger.Error("Failed to render cache index", zap.Error(err))
	}
}

func (b *Browser) index(dir, rel string) (*indexPage, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	page := &indexPage{Title: strings.TrimPrefix(rel, "/")}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, err
		}

		item := indexEntry{
			Name:   entry.Name(),
			URL:    b.prefix + path.Join(rel, entry.Name()),
			IsFile: !info.IsDir(),
		}
		if item.IsFile {
			item.SizeKB = fmt.Sprintf("%.2f", float64(info.Size())/1024)
		}
		page.Entries = append(page.Entries, item)
	}
	return page, nil
}
