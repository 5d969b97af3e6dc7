// package models defines the data model for the downloader: requests,
// progress events, results, and persisted download history records.
package models
