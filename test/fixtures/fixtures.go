// Package fixtures provides bubble content, upstream payloads and HTML pages
// shared by adapter tests.
package fixtures

import "bubbleview/internal/domain"

// MixedBubble is an id-grammar bubble with a file, a link and a timestamp.
func MixedBubble() *domain.Bubble {
	size := int64(1572864)
	start := 83.0
	return &domain.Bubble{
		Slug:        "mixed",
		Grammar:     "id",
		CreatedBy:   "Ana",
		ContentText: `Slides <file-token id="f1"></file-token> and the thread <file-token id="l1"></file-token> from <file-token id="t1"></file-token>`,
		Attachments: []domain.Attachment{
			{ID: "f1", Kind: domain.KindFile, Name: "quarterly_presentation.pdf", SizeBytes: &size, DownloadURL: "https://cdn.example/q.pdf"},
			{ID: "l1", Kind: domain.KindLink, SourceURL: "https://x.com/someone/status/1"},
			{ID: "t1", Kind: domain.KindTimestamp, StartTime: &start},
		},
	}
}

// ArtifactJSON is a details response from the artifact API: delimiter
// content, a file, a link with metadata and a timestamp.
func ArtifactJSON() string {
	return `{
  "artifact": {
    "_id": "abc",
    "contentText": "Look $ and $",
    "createdByPhone": "+15550100",
    "attachments": [
      {"index": 0, "type": "FILE", "cloudFrontDownloadLink": "https://cf/a.png",
       "content": {"id": "f1", "name": "a.png", "s3Url": "https://s3/a.png", "size": 2048, "width": 640, "height": 480}},
      {"index": 1, "type": "LINK",
       "metaData": {"title": "Post", "dataText": "text", "mediaUrl": "https://img", "faviconUrl": "https://fav"},
       "content": {"url": "https://x.com/a/status/1"}},
      {"index": 2, "type": "TIMESTAMP", "content": {"startTime": 42}}
    ]
  }
}`
}

// LegacyBubbleJSON is a bubble from the older token API, whose content uses
// id markers and whose sizes are human strings.
func LegacyBubbleJSON() string {
	return `{
  "_id": "abc",
  "content": "<p>Hi <file-token id=\"t1\"></file-token></p>",
  "createdByPhone": "+15550100",
  "tokens": [
    {"_id": "t1", "type": "application/pdf", "fileName": "r.pdf", "url": "https://cdn/r.pdf", "size": "1.5 MB"},
    {"_id": "t2", "type": "link", "url": "https://github.com"}
  ]
}`
}

// GenerateOpenGraphPage is a link target with full Open Graph tags and a
// relative preview image.
func GenerateOpenGraphPage() string {
	return `
<!DOCTYPE html>
<html>
<head>
    <title>Fallback title</title>
    <meta property="og:title" content=" Release notes ">
    <meta property="og:description" content="Everything that shipped this week.">
    <meta property="og:image" content="/img/card.png">
    <link rel="icon" href="/favicon-32.png">
</head>
<body><h1>Release notes</h1></body>
</html>
`
}

// GenerateTitleOnlyPage has no meta tags at all.
func GenerateTitleOnlyPage() string {
	return `
<!DOCTYPE html>
<html>
<head><title>Just a title</title></head>
<body><p>Nothing else here.</p></body>
</html>
`
}

// GenerateScriptRenderedPage only gets its og:title once its inline script
// runs, which is what the browser fetcher is for.
func GenerateScriptRenderedPage() string {
	return `
<!DOCTYPE html>
<html>
<head>
<script>
var m = document.createElement("meta");
m.setAttribute("property", "og:title");
m.setAttribute("content", "Rendered title");
document.head.appendChild(m);
</script>
</head>
<body></body>
</html>
`
}
