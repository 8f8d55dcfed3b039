package services

import (
	"errors"
	"net/url"
	"strings"

	"github.com/ginvite/ginvite-api/internal/domain"
	"github.com/ginvite/ginvite-api/internal/platform/textutil"
)

const (
	// DefaultPlaceholderImageURL renders a 1200x630 card when an invitation has no photo.
	DefaultPlaceholderImageURL = "https://placehold.co/1200x630/png"

	shareImageWidth   = 1200
	shareImageHeight  = 630
	profileImageSize  = 1200
	lowResProfileHint = "=s96-c"
	hiResProfileHint  = "=s1200-c"
)

var (
	errNoGalleryImage = errors.New("share image: first gallery item is not an https url")
	errNoSubjectPhoto = errors.New("share image: no https subject photo")
	errNotApplicable  = errors.New("share image: category has no subject photo")
	errNoOwnerPhoto   = errors.New("share image: owner photo is not an absolute url")
)

// SelectShareImage picks the link-preview image: the first gallery item, then (for
// circumcision invitations) the first child's photo, then the owner's photo, then a
// placeholder that names displayName. The URL always starts with "http".
func SelectShareImage(inv domain.Invitation, displayName, placeholderBase string) domain.ShareImage {
	alt := "Undangan Digital " + displayName
	for _, candidate := range []domain.Result[domain.ShareImage]{
		galleryShareImage(inv),
		subjectShareImage(inv),
		ownerShareImage(inv),
	} {
		if img, err := candidate.Get(); err == nil {
			img.Alt = alt
			return img
		}
	}
	img := placeholderShareImage(displayName, placeholderBase)
	img.Alt = alt
	return img
}

func galleryShareImage(inv domain.Invitation) domain.Result[domain.ShareImage] {
	if len(inv.Gallery) == 0 || !textutil.IsAbsoluteURL(inv.Gallery[0], "https") {
		return domain.Err[domain.ShareImage](errNoGalleryImage)
	}
	return domain.Ok(domain.ShareImage{URL: strings.TrimSpace(inv.Gallery[0]), Width: shareImageWidth, Height: shareImageHeight})
}

func subjectShareImage(inv domain.Invitation) domain.Result[domain.ShareImage] {
	if !inv.Category.IsCircumcision() {
		return domain.Err[domain.ShareImage](errNotApplicable)
	}
	if len(inv.Children) == 0 || !textutil.IsAbsoluteURL(inv.Children[0].Profile, "https") {
		return domain.Err[domain.ShareImage](errNoSubjectPhoto)
	}
	return domain.Ok(domain.ShareImage{URL: strings.TrimSpace(inv.Children[0].Profile), Width: profileImageSize, Height: profileImageSize})
}

func ownerShareImage(inv domain.Invitation) domain.Result[domain.ShareImage] {
	if !textutil.IsAbsoluteURL(inv.Owner.PictureURL, "http", "https") {
		return domain.Err[domain.ShareImage](errNoOwnerPhoto)
	}
	return domain.Ok(domain.ShareImage{URL: UpgradeProfilePhoto(inv.Owner.PictureURL), Width: profileImageSize, Height: profileImageSize})
}

func placeholderShareImage(displayName, base string) domain.ShareImage {
	base = strings.TrimSpace(base)
	if !textutil.IsAbsoluteURL(base, "http", "https") {
		base = DefaultPlaceholderImageURL
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return domain.ShareImage{
		URL:    base + sep + "text=" + url.QueryEscape(displayName),
		Width:  shareImageWidth,
		Height: shareImageHeight,
	}
}

// UpgradeProfilePhoto rewrites the low-resolution avatar size hint used by Google
// profile photos to a share-sized one.
func UpgradeProfilePhoto(raw string) string {
	return strings.Replace(strings.TrimSpace(raw), lowResProfileHint, hiResProfileHint, 1)
}
