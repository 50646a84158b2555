package sqlite

// dbFile is the database file name inside the data directory.
const dbFile = "contextref.db"

// Every collection shares one table; a document is its JSON body keyed by
// (collection, id).
const (
	createDocuments = `CREATE TABLE IF NOT EXISTS documents (
    collection TEXT NOT NULL,
    id TEXT NOT NULL,
    body TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    PRIMARY KEY (collection, id)
);`

	idxDocumentsCollection = `CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection);`
)

var schemaDDL = []string{
	createDocuments,
	idxDocumentsCollection,
}

var pragmas = []string{
	"PRAGMA busy_timeout = 5000",
	"PRAGMA journal_mode = WAL",
}
