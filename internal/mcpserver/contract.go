package mcpserver

// DocumentFormatContract describes the canonical record document format that
// LLM consumers should follow when creating or reading library documents.
const DocumentFormatContract = `# Alrawi Document Format Contract

Every record stored in the Alrawi library is a Markdown document with YAML
frontmatter. The ` + "`" + `type` + "`" + ` key decides how the document is read.

## Video / series

` + "```" + `markdown
---
title: Human-readable title          # REQUIRED
type: video                          # video | series | playlist
presenter: Speaker name
duration: "01:30:00"                 # HH:MM:SS
durationSeconds: 5400                # derived, do not edit by hand
url: https://...
status: watched
dateAdded: 2025-01-15
categories: ["seerah"]
tags: ["history/early"]
---
# Human-readable title
` + "```" + `

## Book

` + "```" + `markdown
---
title: Book title                    # REQUIRED
type: book
author: Author name
pages: 700
pagesRead: 120                       # 0 <= pagesRead <= pages
status: reading                      # pagesRead == pages forces "completed"
startDate: 2025-01-01
rating: 4                            # 0-5
---
# Book title
` + "```" + `

## Benefits

A benefit lives in TWO places inside its source document, and both must stay
in sync:

1. An entry in the frontmatter ` + "`" + `benefits` + "`" + ` list: a compact JSON object
   with ` + "`" + `id` + "`" + `, ` + "`" + `category` + "`" + `, ` + "`" + `dateAdded` + "`" + `, and ` + "`" + `tags` + "`" + `.
2. A marked block in the body under the ` + "`" + `## Benefits` + "`" + ` heading, fenced by
   ` + "`" + `<!-- start:ID -->` + "`" + ` and ` + "`" + `<!-- end:ID -->` + "`" + ` comments.

Never edit one representation without the other; prefer the ` + "`" + `add_benefit` + "`" + `
tool, which maintains both.

## Rules

1. **YAML frontmatter is mandatory.** The ` + "```" + `---` + "```" + ` fences must open the file.
2. **` + "`" + `title` + "`" + ` and ` + "`" + `type` + "`" + ` are required.**
3. **Dates** use ` + "`" + `YYYY-MM-DD` + "`" + `.
4. **Tags and categories** are hierarchical on ` + "`" + `/` + "`" + ` (e.g. ` + "`" + `hadith/bukhari` + "`" + `).
5. **File paths** end with ` + "`" + `.md` + "`" + ` and use forward slashes; videos live in the
   videos folder, books in the books folder.
6. **Encoding** is UTF-8 with a trailing newline.
7. When editing an existing document, change only the keys you mean to
   change; other lines must survive byte for byte.
`
