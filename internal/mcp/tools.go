package mcp

import "github.com/mark3labs/mcp-go/mcp"

var listToolDef = mcp.NewTool("entry_list",
	mcp.WithDescription("List filed screenshot captures, newest first. Moved files are located again before they are returned."),
	mcp.WithString("query", mcp.Description("Case-insensitive match on title, tags, and notes")),
	mcp.WithString("category", mcp.Description("ALL (default) or an entry type: Nota, Screen, Minuta, Archivo, Task, Hito")),
	mcp.WithNumber("limit", mcp.Description("Max results (default: 20, max: 200)")),
	mcp.WithNumber("offset", mcp.Description("Results to skip (default: 0)")),
)

var getToolDef = mcp.NewTool("entry_get",
	mcp.WithDescription("Fetch one capture by ID with its current note and image paths."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Entry ID")),
)

var saveToolDef = mcp.NewTool("entry_save",
	mcp.WithDescription("File a capture into the vault: route it, write the Markdown note, move the image into attachments, and record the entry."),
	mcp.WithString("title", mcp.Description("Capture title; also names the note file")),
	mcp.WithString("type", mcp.Description("Nota, Screen (default), Minuta, Archivo, Task, or Hito")),
	mcp.WithString("universe", mcp.Description("Universe (area) name")),
	mcp.WithString("project", mcp.Description("Project name")),
	mcp.WithString("client", mcp.Description("Client name")),
	mcp.WithString("role", mcp.Description("Role name")),
	mcp.WithString("tags", mcp.Description("Comma-separated tags")),
	mcp.WithString("notes", mcp.Description("Free-form notes")),
	mcp.WithString("ai_analysis", mcp.Description("AI analysis text to include in the note")),
	mcp.WithString("deadline", mcp.Description("Deadline, YYYY-MM-DD")),
	mcp.WithString("related_file", mcp.Description("Path of a related file")),
	mcp.WithString("software", mcp.Description("Software shown in the capture")),
	mcp.WithString("source", mcp.Description("Where the capture came from")),
	mcp.WithString("target_override", mcp.Description("Absolute folder to file into, bypassing routing")),
	mcp.WithString("image_path", mcp.Description("Absolute path of a PNG to move into the vault")),
	mcp.WithBoolean("keep_image", mcp.Description("Move image_path into the vault (default: false)")),
	mcp.WithString("complexity_level", mcp.Description("Zen, Med, or PRO")),
)

var routeToolDef = mcp.NewTool("vault_route",
	mcp.WithDescription("Show which folder a capture would be filed into and why."),
	mcp.WithString("universe", mcp.Description("Universe (area) name")),
	mcp.WithString("project", mcp.Description("Project name")),
	mcp.WithString("target_override", mcp.Description("Manual target folder")),
)

var recoverToolDef = mcp.NewTool("vault_recover",
	mcp.WithDescription("Locate a screenshot or note that was moved inside the vault."),
	mcp.WithString("path", mcp.Description("The recorded, possibly stale, path")),
	mcp.WithString("title", mcp.Description("Capture title")),
	mcp.WithString("universe", mcp.Description("Universe (area) name")),
	mcp.WithString("project", mcp.Description("Project name")),
	mcp.WithString("kind", mcp.Description("image (default) or note")),
)

var registryListToolDef = mcp.NewTool("registry_list",
	mcp.WithDescription("List the names in a registry collection."),
	mcp.WithString("collection", mcp.Required(), mcp.Description("universes, projects, roles, or clients")),
)

var registryAddToolDef = mcp.NewTool("registry_add",
	mcp.WithDescription("Add a name to a registry collection. Existing names are left alone."),
	mcp.WithString("collection", mcp.Required(), mcp.Description("universes, projects, roles, or clients")),
	mcp.WithString("name", mcp.Required(), mcp.Description("Name to add")),
)
