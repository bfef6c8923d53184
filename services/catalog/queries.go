package catalog

// GraphQL documents for the primary feed. "Recent" is episode-based: the
// airing schedule is queried over a time window and mapped back to the
// series each entry belongs to.

const recentQuery = `
query ($page: Int, $perPage: Int, $airingAtGreater: Int, $airingAtLesser: Int) {
  Page(page: $page, perPage: $perPage) {
    airingSchedules(
      airingAt_greater: $airingAtGreater,
      airingAt_lesser: $airingAtLesser,
      sort: TIME_DESC
    ) {
      airingAt
      episode
      media {
        id
        isAdult
        status
        title { romaji english }
        coverImage { large }
      }
    }
  }
}`

const trendingQuery = `
query ($page: Int, $perPage: Int) {
  Page(page: $page, perPage: $perPage) {
    media(type: ANIME, sort: TRENDING_DESC, isAdult: false) {
      id
      title { romaji english }
      coverImage { large }
    }
  }
}`

const popularQuery = `
query ($page: Int, $perPage: Int) {
  Page(page: $page, perPage: $perPage) {
    media(type: ANIME, sort: POPULARITY_DESC, isAdult: false) {
      id
      title { romaji english }
      coverImage { large }
    }
  }
}`

// Hero slider rows need banner art plus richer metadata for the top section.
const heroQuery = `
query ($page: Int, $perPage: Int) {
  Page(page: $page, perPage: $perPage) {
    media(type: ANIME, sort: TRENDING_DESC, isAdult: false) {
      id
      status
      title { romaji english }
      description(asHtml: false)
      bannerImage
      coverImage { extraLarge }
      genres
      averageScore
      episodes
      season
      seasonYear
    }
  }
}`

const detailsQuery = `
query ($id: Int) {
  Media(id: $id, type: ANIME) {
    id
    title { romaji english }
    description(asHtml: false)
    bannerImage
    coverImage { extraLarge }
    genres
    averageScore
    episodes
    format
    status
    season
    seasonYear
  }
}`

const searchQuery = `
query ($page: Int, $perPage: Int, $search: String) {
  Page(page: $page, perPage: $perPage) {
    pageInfo {
      currentPage
      hasNextPage
    }
    media(type: ANIME, search: $search, sort: POPULARITY_DESC, isAdult: false) {
      id
      title { romaji english }
      coverImage { large }
    }
  }
}`
